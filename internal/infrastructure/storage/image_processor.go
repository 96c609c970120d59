package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Registers JPEG decoder
	_ "image/png"  // Registers PNG decoder

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const defaultMaxDimension = 2048

type ImageProcessor struct {
	MaxSize      int64 // bytes (default: 5MB)
	MaxDimension int   // longest edge in px; larger images are scaled down before upload
}

func NewImageProcessor(maxDimension int) *ImageProcessor {
	if maxDimension <= 0 {
		maxDimension = defaultMaxDimension
	}
	return &ImageProcessor{MaxSize: 5 * 1024 * 1024, MaxDimension: maxDimension}
}

// DetectMime sniffs the content type from the bytes themselves.
func (p *ImageProcessor) DetectMime(data []byte) string {
	return mimetype.Detect(data).String()
}

// ValidateImage checks that data really is a JPEG/PNG of the declared type
// and within MaxSize.
func (p *ImageProcessor) ValidateImage(data []byte, declared string) error {
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}
	if len(data) == 0 {
		return fmt.Errorf("image is empty")
	}

	detected := p.DetectMime(data)
	if detected != declared {
		return fmt.Errorf("image content is %s, declared as %s", detected, declared)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("image format %s not allowed (only jpeg/png)", format)
	}
}

// Fit scales the image down so neither edge exceeds MaxDimension, keeping
// its format. Images already within bounds are returned unchanged.
func (p *ImageProcessor) Fit(data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot read image header: %w", err)
	}
	if cfg.Width <= p.MaxDimension && cfg.Height <= p.MaxDimension {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}
	resized := imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)

	out := imaging.JPEG
	if format == "png" {
		out = imaging.PNG
	}

	b := new(bytes.Buffer)
	if err := imaging.Encode(b, resized, out, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("cannot encode %s: %w", format, err)
	}
	return b.Bytes(), nil
}
