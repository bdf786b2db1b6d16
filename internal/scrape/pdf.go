package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	// MinPDFTextRunes is the native-extraction length below which OCR runs.
	MinPDFTextRunes = 200
	pdfTextBudget   = 15000
	pdfFailureText  = "PDFの読み込みに失敗しました。"
	pdfDescription  = "PDF document"
)

var pdfMagic = []byte("%PDF-")

// Transcriber turns a PDF whose text layer is missing into text.
type Transcriber interface {
	TranscribePDF(ctx context.Context, data []byte, hint string) (string, error)
}

// IsPDF reports whether any signal marks the payload as a PDF: the content
// type, the URL, the content disposition, or the file signature.
func IsPDF(rawURL, contentType, disposition string, body []byte) bool {
	return strings.Contains(contentType, "application/pdf") ||
		strings.Contains(strings.ToLower(rawURL), ".pdf") ||
		strings.Contains(disposition, ".pdf") ||
		bytes.HasPrefix(body, pdfMagic)
}

// ExtractPDFText returns the whitespace-collapsed text layer of a PDF.
// Corrupt files that panic inside the parser are reported as errors.
func ExtractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = eris.Errorf("scrape: pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "scrape: open pdf")
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(t)
		sb.WriteString(" ")
		if sb.Len() > pdfTextBudget*4 {
			break
		}
	}
	return collapse(sb.String()), nil
}

func pdfTitle(rawURL string) string {
	name := "Unknown"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			name = base
		}
	}
	return fmt.Sprintf("PDF Document: %s", name)
}

// pdfBody extracts text, falling back to transcription when the text layer
// is too thin, and keeps the longer of the two.
func (s *Scraper) pdfBody(ctx context.Context, rawURL string, data []byte) string {
	text, err := ExtractPDFText(data)
	if err != nil {
		zap.L().Warn("scrape: pdf extraction failed", zap.String("url", rawURL), zap.Error(err))
		return pdfFailureText
	}

	if utf8.RuneCountInString(text) < MinPDFTextRunes && s.ocr != nil {
		zap.L().Info("scrape: pdf text too short, transcribing",
			zap.String("url", rawURL),
			zap.Int("runes", utf8.RuneCountInString(text)),
		)
		ocrText, err := s.ocr.TranscribePDF(ctx, data, "PDF URL: "+rawURL)
		if err != nil {
			zap.L().Warn("scrape: pdf transcription failed", zap.String("url", rawURL), zap.Error(err))
		} else if cleaned := collapse(ocrText); utf8.RuneCountInString(cleaned) > utf8.RuneCountInString(text) {
			text = cleaned
		}
	}

	return truncateRunes(text, pdfTextBudget)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
