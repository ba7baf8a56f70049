// Package service contains the business logic layer.
//
// This file implements preview image scaling for world artwork uploads.
package service

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/wanderspace/overseer/internal/domain"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ThumbnailProcessor handles scaled JPEG generation from uploaded images.
type ThumbnailProcessor interface {
	// GenerateThumbnail creates a scaled rendition of the provided image data.
	// Returns the rendition bytes (as JPEG), original width, and original height.
	// The rendition will fit within maxWidth x maxHeight while preserving aspect ratio.
	GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) ([]byte, int, int, error)
}

// =============================================================================
// Implementation
// =============================================================================

// imagingProcessor implements ThumbnailProcessor using the imaging library.
type imagingProcessor struct{}

// NewImagingProcessor creates a new thumbnail processor using the imaging library.
func NewImagingProcessor() ThumbnailProcessor {
	return &imagingProcessor{}
}

// GenerateThumbnail creates a scaled rendition of the provided image data.
//
// The image is resized to fit within maxWidth x maxHeight while preserving
// the original aspect ratio. The output is always JPEG format.
//
// Returns:
//   - rendition bytes (JPEG format)
//   - original image width
//   - original image height
//   - error if generation fails
func (p *imagingProcessor) GenerateThumbnail(data io.Reader, maxWidth, maxHeight int) ([]byte, int, int, error) {
	// Decode the image
	img, _, err := image.Decode(data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	// Get original dimensions
	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	// Resize to fit within maxWidth x maxHeight while preserving aspect ratio
	scaled := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	// Encode as JPEG
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.JPEG, imaging.JPEGQuality(domain.PreviewJPEGQuality)); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), originalWidth, originalHeight, nil
}
