// Package ocr transcribes PDFs that have no usable text layer by
// rasterizing their leading pages and handing the images to a vision model.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/config"
)

// Rasterizer renders the first pages of a PDF as PNG images.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, maxPages, width int) ([][]byte, error)
}

// Vision transcribes page images to text.
type Vision interface {
	TranscribeImages(ctx context.Context, pngs [][]byte, hint string) (string, error)
}

// Fallback implements scrape.Transcriber.
type Fallback struct {
	raster   Rasterizer
	vision   Vision
	maxPages int
	width    int
}

// New creates a Fallback. Non-positive maxPages and width default to 3
// pages at 1200px.
func New(r Rasterizer, v Vision, maxPages, width int) *Fallback {
	if maxPages <= 0 {
		maxPages = 3
	}
	if width <= 0 {
		width = 1200
	}
	return &Fallback{raster: r, vision: v, maxPages: maxPages, width: width}
}

// NewFromConfig wires the pdftoppm rasterizer to v.
func NewFromConfig(cfg config.OCRConfig, v Vision) *Fallback {
	return New(NewPdfToPPM(cfg.PdfToPPMPath), v, cfg.MaxPages, cfg.Width)
}

// TranscribePDF rasterizes the leading pages of data and transcribes them.
func (f *Fallback) TranscribePDF(ctx context.Context, data []byte, hint string) (string, error) {
	if f.vision == nil {
		return "", eris.New("ocr: no vision backend configured")
	}
	pages, err := f.raster.Rasterize(ctx, data, f.maxPages, f.width)
	if err != nil {
		return "", eris.Wrap(err, "ocr: rasterize")
	}
	if len(pages) == 0 {
		return "", eris.New("ocr: pdf rendered no pages")
	}
	zap.L().Debug("ocr: transcribing pages", zap.Int("pages", len(pages)), zap.String("hint", hint))

	text, err := f.vision.TranscribeImages(ctx, pages, hint)
	if err != nil {
		return "", eris.Wrap(err, "ocr: transcribe")
	}
	return text, nil
}
