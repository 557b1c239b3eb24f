package inline

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// svgRasterSize is the longest side of a rasterized SVG without a usable
// viewBox, and the cap for those that have one.
const svgRasterSize = 512

// ToPNG re-encodes any supported raster image or SVG document as PNG.
func ToPNG(data []byte) ([]byte, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("image/svg+xml"):
		img, err := RasterizeSVG(data, 0, 0)
		if err != nil {
			return nil, err
		}
		return encodePNG(img)
	case mt.Is("image/png"), mt.Is("image/jpeg"), mt.Is("image/gif"),
		mt.Is("image/bmp"), mt.Is("image/tiff"):
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
		}
		return encodePNG(img)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, mt.String())
	}
}

// RasterizeSVG draws an SVG document on a transparent canvas of w×h pixels.
// A zero size is derived from the viewBox, keeping its aspect ratio.
func RasterizeSVG(data []byte, w, h int) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	if w <= 0 || h <= 0 {
		w, h = fitViewBox(icon.ViewBox.W, icon.ViewBox.H)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	return imaging.Clone(rgba), nil
}

func fitViewBox(vw, vh float64) (int, int) {
	if vw <= 0 || vh <= 0 {
		return svgRasterSize, svgRasterSize
	}
	scale := math.Min(svgRasterSize/math.Max(vw, vh), 4)
	return max(1, int(math.Round(vw*scale))), max(1, int(math.Round(vh*scale)))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
