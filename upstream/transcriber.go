package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// SpeechClient calls an HTTP speech-recognition API. Authentication is
// either a static API key or an OAuth2 client-credentials token source when
// a token URL is configured; the token source caches and refreshes tokens
// across requests.
type SpeechClient struct {
	url    string
	apiKey string
	http   *http.Client
}

// SpeechOptions configures NewSpeechClient.
type SpeechOptions struct {
	URL          string
	APIKey       string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// NewSpeechClient builds a Transcriber for the vendor speech API.
func NewSpeechClient(opts SpeechOptions) (*SpeechClient, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("speech API URL is required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if opts.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		httpClient = cc.Client(context.Background())
		httpClient.Timeout = 30 * time.Second
	}

	return &SpeechClient{
		url:    opts.URL,
		apiKey: opts.APIKey,
		http:   httpClient,
	}, nil
}

// speechResponse is the vendor's recognition result envelope.
type speechResponse struct {
	Transcript string  `json:"transcript"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Transcribe posts raw audio and decodes the recognition result. Vendor
// error text never leaves this method beyond the status code.
func (c *SpeechClient) Transcribe(ctx context.Context, audio []byte, contentType string) (*Transcript, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("building speech request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused; the body is vendor detail
		// we do not surface.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech service returned status %d", resp.StatusCode)
	}

	var out speechResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding speech response: %w", err)
	}

	text := out.Transcript
	if text == "" {
		text = out.Text
	}
	return &Transcript{Text: text, Confidence: out.Confidence}, nil
}
