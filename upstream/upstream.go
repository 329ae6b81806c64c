// Package upstream defines the external-collaborator interfaces the gateway
// calls behind its policy pipeline (speech recognition, speech synthesis,
// language-model text transforms) and their vendor implementations.
//
// The vendor APIs are opaque: this package shapes requests, authenticates,
// and decodes responses, nothing more. All retry and degradation decisions
// belong to the caller.
package upstream

import "context"

// DefaultVoice is the single synthetic voice profile all synthesis uses.
// One female neural en-US voice; not configurable per request.
const DefaultVoice = "en-US-JennyNeural"

// Transcript is the result of one speech-to-text call.
type Transcript struct {
	Text       string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Transcriber converts spoken audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (*Transcript, error)
}

// Synthesizer converts text to spoken audio (audio/mpeg bytes).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NumberSpan records one number-word phrase resolved during normalization.
type NumberSpan struct {
	Original string  `json:"original"`
	Value    float64 `json:"value"`
}

// NormalizeResult is the outcome of a normalization pass.
type NormalizeResult struct {
	NormalizedText string       `json:"normalizedText"`
	Numbers        []NumberSpan `json:"numbers"`
}

// PolishRequest asks for a cleaned-up rendering of user text.
type PolishRequest struct {
	Text        string
	Tone        string
	Constraints []string
}

// LanguageModel performs the two text transforms the gateway exposes.
type LanguageModel interface {
	// Normalize rewrites spoken-style text for the given task (e.g. "amount"),
	// resolving number words to digits.
	Normalize(ctx context.Context, task, text string) (*NormalizeResult, error)
	// Polish returns a tidied version of the text honoring tone and constraints.
	Polish(ctx context.Context, req PolishRequest) (string, error)
}
