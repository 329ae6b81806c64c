package voicegate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses a config file from the given path.
// Supported formats: JSON (.json), YAML (.yaml, .yml). Defaults for quotas
// and timeouts are applied after parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	cfg = cfg.withDefaults()
	return &cfg, nil
}

// configSchema constrains the config document shape. Structural mistakes
// (wrong types, negative quotas) fail fast at load time instead of
// surfacing as odd runtime behavior.
const configSchema = `{
  "type": "object",
  "properties": {
    "origins": {"type": "array", "items": {"type": "string"}},
    "site_url": {"type": "string"},
    "kill_switches": {"type": "object", "additionalProperties": {"type": "string"}},
    "quotas": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "max_requests": {"type": "integer", "minimum": 1},
          "window_ms": {"type": "integer", "minimum": 1}
        }
      }
    },
    "timeouts_ms": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 1}},
    "upstreams": {"type": "object"},
    "audit": {
      "type": "object",
      "properties": {
        "sink": {"enum": ["", "log", "sqlite", "postgres"]},
        "dsn": {"type": "string"}
      }
    }
  }
}`

// ValidateConfig validates a Config for correctness against the embedded
// schema plus a few semantic checks the schema cannot express.
func ValidateConfig(cfg Config) error {
	schema, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding config for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, origin := range cfg.Origins {
		if strings.TrimSpace(origin) == "" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("origin %q must be an absolute http(s) origin", origin)
		}
		if strings.HasSuffix(origin, "/") {
			return fmt.Errorf("origin %q must not carry a trailing slash (matching is exact)", origin)
		}
	}

	switch cfg.Audit.Sink {
	case "", "log", "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.Audit.DSN) == "" {
			return fmt.Errorf("audit sink %q requires a dsn", cfg.Audit.Sink)
		}
	default:
		return fmt.Errorf("unknown audit sink: %q", cfg.Audit.Sink)
	}

	return nil
}

// FromEnv builds a Config snapshot from the process environment. It is read
// exactly once; later environment changes do not affect a running gateway.
func FromEnv() Config {
	cfg := Config{
		SiteURL: os.Getenv("SITE_URL"),
		KillSwitches: map[string]string{
			ClassSTT: os.Getenv("STT_ENABLED"),
			ClassTTS: os.Getenv("TTS_ENABLED"),
			ClassLLM: os.Getenv("LLM_ENABLED"),
		},
		Upstreams: UpstreamConfig{
			Speech: SpeechConfig{
				URL:          os.Getenv("SPEECH_API_URL"),
				APIKey:       os.Getenv("SPEECH_API_KEY"),
				TokenURL:     os.Getenv("SPEECH_TOKEN_URL"),
				ClientID:     os.Getenv("SPEECH_CLIENT_ID"),
				ClientSecret: os.Getenv("SPEECH_CLIENT_SECRET"),
			},
			Synthesis: SynthesisConfig{
				URL:    os.Getenv("SYNTHESIS_API_URL"),
				APIKey: os.Getenv("SYNTHESIS_API_KEY"),
			},
			Language: LanguageConfig{
				OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
				OpenAIModel:      os.Getenv("OPENAI_MODEL"),
				BedrockRegion:    os.Getenv("BEDROCK_REGION"),
				BedrockModel:     os.Getenv("BEDROCK_MODEL"),
				BedrockAccessKey: os.Getenv("BEDROCK_ACCESS_KEY_ID"),
				BedrockSecretKey: os.Getenv("BEDROCK_SECRET_ACCESS_KEY"),
			},
		},
		Audit: AuditConfig{
			Sink: os.Getenv("AUDIT_SINK"),
			DSN:  os.Getenv("AUDIT_DSN"),
		},
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Origins = append(cfg.Origins, o)
			}
		}
	}

	cfg.Quotas = map[string]Quota{}
	for class, envKey := range map[string]string{
		ClassSTT: "STT_RATE_LIMIT",
		ClassTTS: "TTS_RATE_LIMIT",
		ClassLLM: "LLM_RATE_LIMIT",
	} {
		if v := os.Getenv(envKey); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				cfg.Quotas[class] = Quota{MaxRequests: n, WindowMS: defaultWindowMS}
			}
		}
	}

	return cfg.withDefaults()
}
