package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
)

// PdfToPPM rasterizes PDFs with the poppler pdftoppm CLI tool.
type PdfToPPM struct {
	binPath string
}

// NewPdfToPPM creates a PdfToPPM. If binPath is empty, "pdftoppm" is used.
func NewPdfToPPM(binPath string) *PdfToPPM {
	if binPath == "" {
		binPath = "pdftoppm"
	}
	return &PdfToPPM{binPath: binPath}
}

// Rasterize writes pdf to a scratch directory and renders pages 1..maxPages
// as PNGs scaled to width pixels.
func (p *PdfToPPM) Rasterize(ctx context.Context, pdf []byte, maxPages, width int) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "lead-intel-ocr-*")
	if err != nil {
		return nil, eris.Wrap(err, "ocr: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, eris.Wrap(err, "ocr: write pdf")
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, p.binPath,
		"-png",
		"-f", "1",
		"-l", strconv.Itoa(maxPages),
		"-scale-to-x", strconv.Itoa(width),
		"-scale-to-y", "-1",
		in, prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "ocr: pdftoppm failed: %s", stderr.String())
	}

	files, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, eris.Wrap(err, "ocr: list pages")
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(files)
	if len(files) > maxPages {
		files = files[:maxPages]
	}

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, eris.Wrapf(err, "ocr: read %s", filepath.Base(f))
		}
		if len(b) > 0 {
			pages = append(pages, b)
		}
	}
	return pages, nil
}
