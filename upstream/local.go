package upstream

import (
	"context"
	"strings"
	"unicode"
)

// LocalModel is the built-in, deterministic language model. It backs the
// normalize and polish transforms when no vendor model is configured and
// serves as the graceful-degradation target when a vendor call fails: a
// best-effort text pass is safer for the calling UI than a hard error.
type LocalModel struct{}

// NewLocalModel returns the deterministic transform model.
func NewLocalModel() *LocalModel { return &LocalModel{} }

// Normalize resolves number-word phrases to digits. The task hint is not
// needed locally; unparseable text passes through unchanged.
func (m *LocalModel) Normalize(_ context.Context, _ string, text string) (*NormalizeResult, error) {
	normalized, spans := normalizeNumbers(text)
	if spans == nil {
		spans = []NumberSpan{}
	}
	return &NormalizeResult{NormalizedText: normalized, Numbers: spans}, nil
}

// Polish tidies whitespace, capitalizes the first letter, and closes the
// sentence. Tone and constraints require a vendor model; locally they are
// accepted and ignored.
func (m *LocalModel) Polish(_ context.Context, req PolishRequest) (string, error) {
	text := strings.Join(strings.Fields(req.Text), " ")
	if text == "" {
		return "", nil
	}

	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	text = string(runes)

	switch text[len(text)-1] {
	case '.', '!', '?':
	default:
		text += "."
	}
	return text, nil
}
