package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"trykkeri-admin/logging"
)

// ImageSize names a rendition of an asset image
type ImageSize string

const (
	SizeThumb  ImageSize = "thumb"
	SizeMedium ImageSize = "medium"
)

const (
	qualityThumb  = 60
	qualityMedium = 75
	// max dimension in pixels
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// ParseImageSize maps a query value to a rendition, empty means medium
func ParseImageSize(s string) (ImageSize, error) {
	switch ImageSize(s) {
	case "", SizeMedium:
		return SizeMedium, nil
	case SizeThumb:
		return SizeThumb, nil
	}
	return "", fmt.Errorf("invalid image size: %q", s)
}

func (s ImageSize) limits() (maxDim, quality int) {
	if s == SizeThumb {
		return maxSizeThumb, qualityThumb
	}
	return maxSizeMedium, qualityMedium
}

// OptimizeImage converts an image to JPEG and shrinks it to fit the rendition.
// Smaller images keep their dimensions.
func OptimizeImage(imageData []byte, size ImageSize) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := size.limits()
	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		logging.Debugf("🔄 Resizing image: %dx%d -> %dx%d", bounds.Dx(), bounds.Dy(), resized.Bounds().Dx(), resized.Bounds().Dy())
		img = resized
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	logging.Debugf("✓ Image optimized: size=%s, quality=%d, output_size=%d bytes", size, quality, buf.Len())
	return buf.Bytes(), nil
}

// ImageCache keeps optimized renditions on disk
type ImageCache struct {
	dir string
}

// NewImageCache creates the cache directory if needed
func NewImageCache(dir string) (*ImageCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &ImageCache{dir: dir}, nil
}

// Path returns the cache file path for an asset rendition
func (c *ImageCache) Path(assetID string, size ImageSize) string {
	return filepath.Join(c.dir, fmt.Sprintf("design_asset_%s_%s.jpg", assetID, size))
}

// Read returns the cached bytes, ok is false on a miss
func (c *ImageCache) Read(assetID string, size ImageSize) ([]byte, bool) {
	data, err := os.ReadFile(c.Path(assetID, size))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Write stores a rendition
func (c *ImageCache) Write(assetID string, size ImageSize, data []byte) error {
	path := c.Path(assetID, size)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	logging.Debugf("✓ Image cached: %s", path)
	return nil
}
