package voicegate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/harborplan/voicegate/internal/redact"
	"github.com/harborplan/voicegate/upstream"
)

// ErrNotConfigured is returned by a capability whose upstream collaborator
// was never wired. The gateway maps it to a 503 rather than a 500.
var ErrNotConfigured = errors.New("upstream not configured")

// ValidationError marks request-shape failures. Its message is safe to show
// to callers.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Capability is one parameterized entry in the request pipeline. All four
// endpoints run the same stage order; only these fields differ.
type Capability struct {
	// Name identifies the capability in logs, metrics and audit events.
	Name string
	// Class selects the quota row, the timeout and the kill switch.
	Class string
	// TimeoutMessage is the user-safe text used when the action overruns.
	TimeoutMessage string
	// Validate parses and checks the request, returning the action payload.
	Validate func(r *http.Request) (any, error)
	// Execute performs the upstream or local work.
	Execute func(ctx context.Context, payload any) (*Result, error)
	// Fallback, when set, produces a degraded result after Execute fails.
	// Returning nil declines to degrade and the error response stands.
	Fallback func(payload any) *Result
}

const (
	maxAudioBytes = 10 << 20 // multipart audio upload cap
	maxTextChars  = 5000
)

type sttPayload struct {
	audio       []byte
	contentType string
}

type ttsPayload struct {
	text string
}

type normalizePayload struct {
	task string
	text string
}

type polishPayload struct {
	req upstream.PolishRequest
}

// STT builds the speech-to-text capability. The request is multipart form
// data with the audio under the "audio" field; a form value encoding=base64
// marks a base64-framed upload.
func STT(t upstream.Transcriber) Capability {
	return Capability{
		Name:           "stt",
		Class:          ClassSTT,
		TimeoutMessage: "transcription timed out",
		Validate: func(r *http.Request) (any, error) {
			if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
				return nil, invalid("expected multipart form data with an audio field")
			}
			file, header, err := r.FormFile("audio")
			if err != nil {
				return nil, invalid("missing audio field")
			}
			defer file.Close()
			contentType := header.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
			if err != nil {
				return nil, invalid("unreadable audio upload")
			}
			if len(data) == 0 {
				return nil, invalid("empty audio upload")
			}
			if len(data) > maxAudioBytes {
				return nil, invalid("audio upload exceeds %d bytes", maxAudioBytes)
			}
			if r.FormValue("encoding") == "base64" {
				decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
				if err != nil {
					return nil, invalid("audio field is not valid base64")
				}
				data = decoded
			}
			return sttPayload{audio: data, contentType: contentType}, nil
		},
		Execute: func(ctx context.Context, payload any) (*Result, error) {
			if t == nil {
				return nil, ErrNotConfigured
			}
			p := payload.(sttPayload)
			tr, err := t.Transcribe(ctx, p.audio, p.contentType)
			if err != nil {
				return nil, err
			}
			return &Result{JSON: tr}, nil
		},
	}
}

// TTS builds the text-to-speech capability. Input text is scrubbed for
// sensitive number patterns before it reaches the synthesis vendor, and the
// response body is the raw audio stream.
func TTS(s upstream.Synthesizer) Capability {
	return Capability{
		Name:           "tts",
		Class:          ClassTTS,
		TimeoutMessage: "speech synthesis timed out",
		Validate: func(r *http.Request) (any, error) {
			var body struct {
				Text string `json:"text"`
			}
			if err := decodeJSON(r, &body); err != nil {
				return nil, err
			}
			text := strings.TrimSpace(body.Text)
			if text == "" {
				return nil, invalid("text is required")
			}
			if len(text) > maxTextChars {
				return nil, invalid("text exceeds %d characters", maxTextChars)
			}
			return ttsPayload{text: text}, nil
		},
		Execute: func(ctx context.Context, payload any) (*Result, error) {
			if s == nil {
				return nil, ErrNotConfigured
			}
			p := payload.(ttsPayload)
			audio, err := s.Synthesize(ctx, redact.Text(p.text))
			if err != nil {
				return nil, err
			}
			return &Result{Binary: audio, ContentType: "audio/mpeg"}, nil
		},
	}
}

// Normalize builds the LLM normalization capability. When the primary model
// fails or times out, the local deterministic model answers instead; if even
// that fails the text passes through unchanged.
func Normalize(model, local upstream.LanguageModel) Capability {
	if local == nil {
		local = upstream.NewLocalModel()
	}
	return Capability{
		Name:           "normalize",
		Class:          ClassLLM,
		TimeoutMessage: "normalization timed out",
		Validate: func(r *http.Request) (any, error) {
			var body struct {
				Task string `json:"task"`
				Text string `json:"text"`
			}
			if err := decodeJSON(r, &body); err != nil {
				return nil, err
			}
			text := strings.TrimSpace(body.Text)
			if text == "" {
				return nil, invalid("text is required")
			}
			if len(text) > maxTextChars {
				return nil, invalid("text exceeds %d characters", maxTextChars)
			}
			task := strings.TrimSpace(body.Task)
			if task == "" {
				task = "general"
			}
			return normalizePayload{task: task, text: text}, nil
		},
		Execute: func(ctx context.Context, payload any) (*Result, error) {
			p := payload.(normalizePayload)
			m := model
			if m == nil {
				m = local
			}
			res, err := m.Normalize(ctx, p.task, p.text)
			if err != nil {
				return nil, err
			}
			return &Result{JSON: res}, nil
		},
		Fallback: func(payload any) *Result {
			p := payload.(normalizePayload)
			res, err := local.Normalize(context.Background(), p.task, p.text)
			if err != nil {
				res = &upstream.NormalizeResult{
					NormalizedText: p.text,
					Numbers:        []upstream.NumberSpan{},
				}
			}
			return &Result{JSON: res}
		},
	}
}

// Polish builds the LLM polish capability. Degradation mirrors Normalize:
// local model first, identity text as the floor.
func Polish(model, local upstream.LanguageModel) Capability {
	if local == nil {
		local = upstream.NewLocalModel()
	}
	return Capability{
		Name:           "polish",
		Class:          ClassLLM,
		TimeoutMessage: "polish timed out",
		Validate: func(r *http.Request) (any, error) {
			var body struct {
				Text        string   `json:"text"`
				Tone        string   `json:"tone"`
				Constraints []string `json:"constraints"`
			}
			if err := decodeJSON(r, &body); err != nil {
				return nil, err
			}
			text := strings.TrimSpace(body.Text)
			if text == "" {
				return nil, invalid("text is required")
			}
			if len(text) > maxTextChars {
				return nil, invalid("text exceeds %d characters", maxTextChars)
			}
			return polishPayload{req: upstream.PolishRequest{
				Text:        text,
				Tone:        strings.TrimSpace(body.Tone),
				Constraints: body.Constraints,
			}}, nil
		},
		Execute: func(ctx context.Context, payload any) (*Result, error) {
			p := payload.(polishPayload)
			m := model
			if m == nil {
				m = local
			}
			polished, err := m.Polish(ctx, p.req)
			if err != nil {
				return nil, err
			}
			return &Result{JSON: map[string]string{"polishedText": polished}}, nil
		},
		Fallback: func(payload any) *Result {
			p := payload.(polishPayload)
			polished, err := local.Polish(context.Background(), p.req)
			if err != nil {
				polished = p.req.Text
			}
			return &Result{JSON: map[string]string{"polishedText": polished}}
		},
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return invalid("request body is not valid JSON")
	}
	return nil
}
