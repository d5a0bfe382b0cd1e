package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// DefaultCoverQuality is the JPEG quality used for saved cover art.
const DefaultCoverQuality = 90

// CoverProcessor converts downloaded cover art into a JPEG that fits
// within a square bounding box.
//
// Example usage:
//
//	proc := NewCoverProcessor(1000)
//	out, err := proc.Process(ctx, imageData)
//	// A 1500x1000 image becomes 1000x666
//	// A 800x600 image remains 800x600 (but re-encoded)
type CoverProcessor struct {
	// MaxSize bounds both dimensions in pixels. Zero or negative disables resizing.
	MaxSize int

	// Quality is the JPEG quality (1-100).
	Quality int
}

// NewCoverProcessor creates a CoverProcessor with the default JPEG quality.
func NewCoverProcessor(maxSize int) *CoverProcessor {
	return &CoverProcessor{MaxSize: maxSize, Quality: DefaultCoverQuality}
}

// Process decodes data, scales it down to fit MaxSize preserving the aspect
// ratio, and returns JPEG-encoded bytes. Images already within bounds are
// only re-encoded.
func (p *CoverProcessor) Process(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), p.MaxSize)

	out := img
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
	}

	quality := p.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultCoverQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FitWithin returns dimensions scaled down so neither exceeds limit.
func FitWithin(width, height, limit int) (int, int) {
	if limit <= 0 || (width <= limit && height <= limit) || width == 0 || height == 0 {
		return width, height
	}
	if width >= height {
		h := height * limit / width
		if h < 1 {
			h = 1
		}
		return limit, h
	}
	w := width * limit / height
	if w < 1 {
		w = 1
	}
	return w, limit
}
