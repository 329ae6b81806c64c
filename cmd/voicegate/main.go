// Command voicegate runs the gateway HTTP server: the four capability
// endpoints plus health and metrics.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	voicegate "github.com/harborplan/voicegate"
	"github.com/harborplan/voicegate/internal/logging"
	"github.com/harborplan/voicegate/internal/version"
	"github.com/harborplan/voicegate/upstream"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	// Config snapshot: from a file when VOICEGATE_CONFIG is set, otherwise
	// from the environment. Read once; the gateway never re-reads it.
	var cfg voicegate.Config
	if cfgPath := os.Getenv("VOICEGATE_CONFIG"); cfgPath != "" {
		loaded, err := voicegate.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := voicegate.ValidateConfig(*loaded); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
		cfg = *loaded
		log.Printf("Config loaded from %s", cfgPath)
	} else {
		cfg = voicegate.FromEnv()
		log.Println("No VOICEGATE_CONFIG set; using environment configuration")
	}

	gw, err := voicegate.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create gateway: %v", err)
	}

	transcriber, synthesizer, model := buildUpstreams(cfg)

	r := newRouter(gw, transcriber, synthesizer, model)

	// Expired rate-limit windows are swept lazily on a timer; the limiter
	// itself never grows unbounded between sweeps.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			gw.EvictExpired()
		}
	}()

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("voicegate %s listening on %s", version.Short(), addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("Server error: %v", err) //nolint:gocritic
	}
	log.Println("Server stopped.")
}

// buildUpstreams wires the configured vendor clients. Absent configuration
// leaves a collaborator nil: the speech endpoints then answer 503 while the
// language endpoints fall back to the local model.
func buildUpstreams(cfg voicegate.Config) (upstream.Transcriber, upstream.Synthesizer, upstream.LanguageModel) {
	var transcriber upstream.Transcriber
	if sp := cfg.Upstreams.Speech; sp.URL != "" {
		client, err := upstream.NewSpeechClient(upstream.SpeechOptions{
			URL:          sp.URL,
			APIKey:       sp.APIKey,
			TokenURL:     sp.TokenURL,
			ClientID:     sp.ClientID,
			ClientSecret: sp.ClientSecret,
		})
		if err != nil {
			log.Fatalf("Speech client: %v", err)
		}
		transcriber = client
		log.Println("Upstream configured: speech")
	}

	var synthesizer upstream.Synthesizer
	if sy := cfg.Upstreams.Synthesis; sy.URL != "" {
		client, err := upstream.NewSynthesisClient(sy.URL, sy.APIKey)
		if err != nil {
			log.Fatalf("Synthesis client: %v", err)
		}
		synthesizer = client
		log.Println("Upstream configured: synthesis")
	}

	var model upstream.LanguageModel
	lang := cfg.Upstreams.Language
	switch {
	case lang.OpenAIKey != "":
		m, err := upstream.NewOpenAIModel(lang.OpenAIKey, lang.OpenAIModel)
		if err != nil {
			log.Fatalf("OpenAI model: %v", err)
		}
		model = m
		log.Println("Upstream configured: openai")
	case lang.BedrockRegion != "":
		m, err := upstream.NewBedrockModel(context.Background(), upstream.BedrockOptions{
			Region:    lang.BedrockRegion,
			Model:     lang.BedrockModel,
			AccessKey: lang.BedrockAccessKey,
			SecretKey: lang.BedrockSecretKey,
		})
		if err != nil {
			log.Fatalf("Bedrock model: %v", err)
		}
		model = m
		log.Println("Upstream configured: bedrock")
	default:
		log.Println("No language model configured; using local transforms")
	}

	return transcriber, synthesizer, model
}

// newRouter builds the HTTP router. Each capability registers both POST and
// OPTIONS so preflights reach the pipeline's own preflight stage.
func newRouter(gw *voicegate.Gateway, t upstream.Transcriber, s upstream.Synthesizer, m upstream.LanguageModel) http.Handler {
	local := upstream.NewLocalModel()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware)

	mount := func(path string, h http.HandlerFunc) {
		r.Post(path, h)
		r.Options(path, h)
	}
	mount("/api/voice/stt", gw.Handler(voicegate.STT(t)))
	mount("/api/voice/tts", gw.Handler(voicegate.TTS(s)))
	mount("/api/llm/normalize", gw.Handler(voicegate.Normalize(m, local)))
	mount("/api/llm/polish", gw.Handler(voicegate.Polish(m, local)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
