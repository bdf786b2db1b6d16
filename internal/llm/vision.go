package llm

import (
	"context"
	"strings"
)

// TranscribeImages runs OCR over PNG page images on the vision cascade.
// It satisfies ocr.Vision.
func (o *Orchestrator) TranscribeImages(ctx context.Context, pngs [][]byte, hint string) (string, error) {
	if len(pngs) == 0 {
		return "", nil
	}
	prompt, err := render("ocr.tmpl", ocrData{Hint: hint})
	if err != nil {
		return "", err
	}
	text, err := o.cascade(ctx, o.vision, Call{Phase: "ocr", Prompt: prompt, Images: pngs})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
