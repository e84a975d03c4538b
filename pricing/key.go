package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// NoVariant is the variant key used when a combination has no secondary selections
	NoVariant = "none"

	keySep     = "::"
	variantSep = "|"
)

// ErrInvalidKey is returned when a matrix key cannot be parsed
var ErrInvalidKey = errors.New("invalid matrix key")

// VariantKey builds the order-independent identifier for secondary selections.
// Ids are deduplicated and sorted before joining so any selection order maps to the same key.
func VariantKey(valueIDs []string) string {
	if len(valueIDs) == 0 {
		return NoVariant
	}
	seen := make(map[string]struct{}, len(valueIDs))
	ids := make([]string, 0, len(valueIDs))
	for _, id := range valueIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return NoVariant
	}
	sort.Strings(ids)
	return strings.Join(ids, variantSep)
}

// SplitVariantKey returns the sorted ids of a variant key, nil for NoVariant
func SplitVariantKey(variant string) []string {
	if variant == "" || variant == NoVariant {
		return nil
	}
	return strings.Split(variant, variantSep)
}

// BuildKey returns formatID::materialID::variantKey::quantity
func BuildKey(formatID, materialID string, variantValueIDs []string, quantity int) string {
	return formatID + keySep + materialID + keySep + VariantKey(variantValueIDs) + keySep + strconv.Itoa(quantity)
}

// Context identifies one row of the matrix: everything in a key except the quantity
type Context struct {
	FormatID   string   `json:"formatId"`
	MaterialID string   `json:"materialId"`
	VariantIDs []string `json:"variantIds,omitempty"`
}

// Variant returns the variant key of the context
func (c Context) Variant() string {
	return VariantKey(c.VariantIDs)
}

// Prefix returns the key without its quantity part
func (c Context) Prefix() string {
	return c.FormatID + keySep + c.MaterialID + keySep + c.Variant()
}

// Key returns the matrix key of the context at a quantity
func (c Context) Key(quantity int) string {
	return BuildKey(c.FormatID, c.MaterialID, c.VariantIDs, quantity)
}

// MatrixKey is a parsed matrix key
type MatrixKey struct {
	FormatID   string
	MaterialID string
	Variant    string
	Quantity   int
}

// Context drops the quantity
func (k MatrixKey) Context() Context {
	return Context{FormatID: k.FormatID, MaterialID: k.MaterialID, VariantIDs: SplitVariantKey(k.Variant)}
}

func (k MatrixKey) String() string {
	return k.FormatID + keySep + k.MaterialID + keySep + k.Variant + keySep + strconv.Itoa(k.Quantity)
}

// ParseKey splits a key produced by BuildKey
func ParseKey(key string) (MatrixKey, error) {
	parts := strings.Split(key, keySep)
	if len(parts) != 4 {
		return MatrixKey{}, fmt.Errorf("%w: %q has %d parts", ErrInvalidKey, key, len(parts))
	}
	qty, err := strconv.Atoi(parts[3])
	if err != nil {
		return MatrixKey{}, fmt.Errorf("%w: %q quantity: %v", ErrInvalidKey, key, err)
	}
	variant := parts[2]
	if variant == "" {
		variant = NoVariant
	}
	return MatrixKey{FormatID: parts[0], MaterialID: parts[1], Variant: variant, Quantity: qty}, nil
}

// CanonicalKey parses a key from outside the package and rebuilds it with a sorted variant
func CanonicalKey(key string) (string, error) {
	k, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return BuildKey(k.FormatID, k.MaterialID, SplitVariantKey(k.Variant), k.Quantity), nil
}

// CanonicalKeys rekeys entries with CanonicalKey. Entries that collapse onto the same key
// keep the one whose original key sorts last.
func CanonicalKeys(entries map[string]AnchorEntry) (map[string]AnchorEntry, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]AnchorEntry, len(entries))
	for _, k := range keys {
		ck, err := CanonicalKey(k)
		if err != nil {
			return nil, err
		}
		out[ck] = entries[k]
	}
	return out, nil
}
