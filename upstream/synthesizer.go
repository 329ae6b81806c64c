package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SynthesisClient calls an HTTP text-to-speech API and returns audio/mpeg
// bytes. Every request uses DefaultVoice; the voice profile is a product
// decision, not a caller option.
type SynthesisClient struct {
	url    string
	apiKey string
	http   *http.Client
}

// NewSynthesisClient builds a Synthesizer for the vendor TTS API.
func NewSynthesisClient(url, apiKey string) (*SynthesisClient, error) {
	if url == "" {
		return nil, fmt.Errorf("synthesis API URL is required")
	}
	return &SynthesisClient{
		url:    url,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type synthesisRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	// MP3 output; the gateway's response contract is audio/mpeg.
	Format string `json:"format"`
}

// Synthesize posts text and returns the rendered audio. Callers are
// responsible for scrubbing the text before it reaches this method.
func (c *SynthesisClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{Text: text, Voice: DefaultVoice, Format: "mp3"})
	if err != nil {
		return nil, fmt.Errorf("encoding synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("synthesis service returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading synthesis audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis service returned empty audio")
	}
	return audio, nil
}
