package badge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
)

// ErrUnknownSize is returned when an image's dimensions cannot be read.
var ErrUnknownSize = errors.New("cannot determine image size")

// Size is an intrinsic image size in CSS pixels.
type Size struct {
	Width, Height float64
}

// IsSVG reports whether data looks like SVG markup.
func IsSVG(data []byte) bool {
	if mimetype.Detect(data).Is("image/svg+xml") {
		return true
	}
	head := data[:min(len(data), 1024)]
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// IntrinsicSize reads the natural size of an SVG (from its viewBox or
// width/height) or of a PNG, JPEG or GIF.
func IntrinsicSize(data []byte) (Size, error) {
	if IsSVG(data) {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
		if err != nil {
			return Size{}, fmt.Errorf("%w: %v", ErrUnknownSize, err)
		}
		if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
			return Size{}, fmt.Errorf("%w: empty viewBox", ErrUnknownSize)
		}
		return Size{Width: icon.ViewBox.W, Height: icon.ViewBox.H}, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Size{}, fmt.Errorf("%w: %v", ErrUnknownSize, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Size{}, fmt.Errorf("%w: empty image", ErrUnknownSize)
	}
	return Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// DerivedWidth returns the rendered width of a badge displayed at height,
// capped at MaxWidth. It is zero when the size is unknown.
func DerivedWidth(height float64, s Size) float64 {
	if s.Width <= 0 || s.Height <= 0 || height <= 0 {
		return 0
	}
	return min(height*s.Width/s.Height, MaxWidth)
}
