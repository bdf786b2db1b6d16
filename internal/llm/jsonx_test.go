package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"fenced", "説明です\n```json\n{\"a\": 1}\n```\n以上", `{"a": 1}`, true},
		{"bare fence", "```\n{\"a\": 2}\n```", `{"a": 2}`, true},
		{"whole reply", "  {\"a\": 3}  ", `{"a": 3}`, true},
		{"embedded object", "結果は {\"a\": {\"b\": 4}} です", `{"a": {"b": 4}}`, true},
		{"first fence wins", "```json\n{\"a\": 5}\n```\n```json\n{\"a\": 6}\n```", `{"a": 5}`, true},
		{"invalid fence falls through", "```json\n{oops}\n```", "", false},
		{"no json", "申し訳ありません", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
