package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSpeechClientTranscribe(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_, _ = io.Copy(io.Discard, r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transcript": "contribute ten thousand",
			"confidence": 0.93,
		})
	}))
	defer srv.Close()

	c, err := NewSpeechClient(SpeechOptions{URL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	tr, err := c.Transcribe(context.Background(), []byte("audio-bytes"), "audio/webm")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if tr.Text != "contribute ten thousand" || tr.Confidence != 0.93 {
		t.Fatalf("transcript = %+v", tr)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotContentType != "audio/webm" {
		t.Errorf("content type = %q", gotContentType)
	}
}

func TestSpeechClientUpstreamErrorIsOpaque(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal vendor stack trace: secret", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewSpeechClient(SpeechOptions{URL: srv.URL})
	_, err := c.Transcribe(context.Background(), []byte("x"), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "speech service returned status 502"; err.Error() != want {
		t.Fatalf("error = %q, want %q (vendor text must not leak)", err.Error(), want)
	}
}

func TestSynthesisClientUsesFixedVoice(t *testing.T) {
	var got synthesisRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xff, 0xfb, 0x90})
	}))
	defer srv.Close()

	c, err := NewSynthesisClient(srv.URL, "tts-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	audio, err := c.Synthesize(context.Background(), "your election is saved")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(audio) != 3 {
		t.Fatalf("audio length = %d", len(audio))
	}
	if got.Voice != DefaultVoice {
		t.Errorf("voice = %q, want %q", got.Voice, DefaultVoice)
	}
	if got.Text != "your election is saved" {
		t.Errorf("text = %q", got.Text)
	}
}

func TestSynthesisClientRejectsEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewSynthesisClient(srv.URL, "")
	if _, err := c.Synthesize(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for empty audio body")
	}
}
