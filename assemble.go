package productsheet

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

const sheetImageName = "fiche"

// pdfAssembler implements Assembler with gofpdf.
type pdfAssembler struct {
	creator string
}

var _ Assembler = (*pdfAssembler)(nil)

func newPDFAssembler() *pdfAssembler {
	return &pdfAssembler{creator: "fiche"}
}

// Assemble writes a single A5 portrait page holding the bitmap at placement.
// The bitmap is re-encoded as 8-bit non-interlaced PNG first, the only
// flavor the PDF encoder embeds reliably.
func (a *pdfAssembler) Assemble(bitmap *Bitmap, placement Placement) ([]byte, error) {
	if bitmap == nil || len(bitmap.PNG) == 0 {
		return nil, fmt.Errorf("%w: empty bitmap", ErrAssemble)
	}

	img, err := imaging.Decode(bytes.NewReader(bitmap.PNG))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding bitmap: %v", ErrAssemble, err)
	}
	var normalized bytes.Buffer
	if err := imaging.Encode(&normalized, imaging.Clone(img), imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encoding bitmap: %v", ErrAssemble, err)
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(a.creator, true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(sheetImageName, opts, &normalized)
	pdf.ImageOptions(sheetImageName, placement.X, placement.Y, placement.Width, placement.Height, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssemble, err)
	}
	return out.Bytes(), nil
}
