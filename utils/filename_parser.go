package utils

import (
	"fmt"
	"regexp"
	"strings"

	"trykkeri-admin/models"
)

var extRegex = regexp.MustCompile(`(?i)\.(png|jpe?g|webp)$`)

// ParsedFileName is what an asset file name tells about the asset
type ParsedFileName struct {
	Kind models.AssetKind
	Name string
}

// ParseFileName parses a filename following the pattern:
// KIND_NAME.EXT where NAME uses '-' or '_' between words
// Example: finish_soft-touch.png
func ParseFileName(filename string) (*ParsedFileName, error) {
	base := extRegex.ReplaceAllString(strings.TrimSpace(filename), "")
	if base == filename {
		return nil, fmt.Errorf("unsupported image extension: %s", filename)
	}

	prefix, rest, ok := strings.Cut(base, "_")
	if !ok {
		return nil, fmt.Errorf("invalid filename format: expected KIND_NAME, got %s", filename)
	}

	kind, err := models.ParseAssetKind(prefix)
	if err != nil {
		return nil, err
	}

	name := strings.Join(strings.FieldsFunc(rest, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}), " ")
	if name == "" {
		return nil, fmt.Errorf("invalid filename format: empty name in %s", filename)
	}

	return &ParsedFileName{Kind: kind, Name: name}, nil
}
