package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	fenceRe  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON finds the JSON payload in a model reply: the first fenced
// block, else the whole reply, else the outermost brace span.
func ExtractJSON(text string) (string, bool) {
	if m := fenceRe.FindStringSubmatch(text); m != nil && json.Valid([]byte(m[1])) {
		return m[1], true
	}
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return trimmed, true
	}
	if m := objectRe.FindString(text); m != "" && json.Valid([]byte(m)) {
		return m, true
	}
	return "", false
}

// decodeReply extracts and unmarshals the JSON payload of text into v.
func decodeReply(text string, v any) error {
	raw, ok := ExtractJSON(text)
	if !ok {
		return eris.New("llm: reply contains no JSON")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return eris.Wrap(err, "llm: decode reply")
	}
	return nil
}
