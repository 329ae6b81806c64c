package voicegate

import "time"

// Config is the immutable configuration snapshot for the gateway. It is
// built once at process start (from a file via LoadConfig, or from the
// environment via FromEnv) and passed into New; the gateway never reads
// configuration ad hoc per request.
type Config struct {
	// Origins is the list of origins allowed to call the gateway.
	Origins []string `json:"origins,omitempty" yaml:"origins,omitempty"`
	// SiteURL is the production site origin, added to the allow-list.
	SiteURL string `json:"site_url,omitempty" yaml:"site_url,omitempty"`
	// KillSwitches maps a capability group to its raw flag value. A group is
	// disabled only when its value is the literal string "false"; any other
	// value, including absent, means enabled.
	KillSwitches map[string]string `json:"kill_switches,omitempty" yaml:"kill_switches,omitempty"`
	// Quotas maps an endpoint class to its rate-limit quota.
	Quotas map[string]Quota `json:"quotas,omitempty" yaml:"quotas,omitempty"`
	// Timeouts maps an endpoint class to its upstream deadline in milliseconds.
	Timeouts map[string]int `json:"timeouts_ms,omitempty" yaml:"timeouts_ms,omitempty"`
	// Upstreams configures the external speech and language services.
	Upstreams UpstreamConfig `json:"upstreams,omitempty" yaml:"upstreams,omitempty"`
	// Audit configures the audit event sink.
	Audit AuditConfig `json:"audit,omitempty" yaml:"audit,omitempty"`
}

// Quota is a fixed-window rate-limit budget for one endpoint class.
type Quota struct {
	MaxRequests int `json:"max_requests" yaml:"max_requests"`
	WindowMS    int `json:"window_ms" yaml:"window_ms"`
}

// Window returns the quota window as a duration.
func (q Quota) Window() time.Duration {
	return time.Duration(q.WindowMS) * time.Millisecond
}

// UpstreamConfig holds credentials and endpoints for external collaborators.
// Keys are opaque secrets: they are passed to the vendor clients and never
// logged or echoed in responses.
type UpstreamConfig struct {
	Speech    SpeechConfig    `json:"speech,omitempty" yaml:"speech,omitempty"`
	Synthesis SynthesisConfig `json:"synthesis,omitempty" yaml:"synthesis,omitempty"`
	Language  LanguageConfig  `json:"language,omitempty" yaml:"language,omitempty"`
}

// SpeechConfig configures the speech-to-text vendor API.
type SpeechConfig struct {
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// OAuth2 client-credentials flow, used instead of APIKey when TokenURL is set.
	TokenURL     string `json:"token_url,omitempty" yaml:"token_url,omitempty"`
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
}

// SynthesisConfig configures the text-to-speech vendor API. The voice profile
// is fixed at build time (see upstream.DefaultVoice) and is not configurable
// per request.
type SynthesisConfig struct {
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// LanguageConfig selects the language-model upstream. When neither OpenAI nor
// Bedrock is configured the gateway runs the built-in local transform.
type LanguageConfig struct {
	OpenAIKey     string `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	OpenAIModel   string `json:"openai_model,omitempty" yaml:"openai_model,omitempty"`
	BedrockRegion string `json:"bedrock_region,omitempty" yaml:"bedrock_region,omitempty"`
	BedrockModel  string `json:"bedrock_model,omitempty" yaml:"bedrock_model,omitempty"`
	// Static AWS credentials for Bedrock; falls back to the default chain when empty.
	BedrockAccessKey string `json:"bedrock_access_key,omitempty" yaml:"bedrock_access_key,omitempty"`
	BedrockSecretKey string `json:"bedrock_secret_key,omitempty" yaml:"bedrock_secret_key,omitempty"`
}

// AuditConfig selects where audit events are written.
// Sink is one of "log" (structured log stream, the default), "sqlite", or
// "postgres"; DSN applies to the SQL sinks.
type AuditConfig struct {
	Sink string `json:"sink,omitempty" yaml:"sink,omitempty"`
	DSN  string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Endpoint class and kill-switch group names.
const (
	ClassSTT = "stt"
	ClassTTS = "tts"
	ClassLLM = "llm"
)

// Default per-class quotas and deadlines. All of these are deployment
// configuration; the constants only seed the defaults.
const (
	defaultSTTQuota = 30
	defaultTTSQuota = 30
	defaultLLMQuota = 20

	defaultWindowMS = 60_000

	defaultSTTTimeoutMS = 10_000
	defaultTTSTimeoutMS = 10_000
	defaultLLMTimeoutMS = 8_000
)

// withDefaults fills unset quotas and timeouts so callers always get a
// complete snapshot.
func (c Config) withDefaults() Config {
	if c.Quotas == nil {
		c.Quotas = map[string]Quota{}
	}
	setQuota := func(class string, max int) {
		q, ok := c.Quotas[class]
		if !ok {
			q = Quota{MaxRequests: max, WindowMS: defaultWindowMS}
		}
		if q.MaxRequests <= 0 {
			q.MaxRequests = max
		}
		if q.WindowMS <= 0 {
			q.WindowMS = defaultWindowMS
		}
		c.Quotas[class] = q
	}
	setQuota(ClassSTT, defaultSTTQuota)
	setQuota(ClassTTS, defaultTTSQuota)
	setQuota(ClassLLM, defaultLLMQuota)

	if c.Timeouts == nil {
		c.Timeouts = map[string]int{}
	}
	setTimeout := func(class string, ms int) {
		if c.Timeouts[class] <= 0 {
			c.Timeouts[class] = ms
		}
	}
	setTimeout(ClassSTT, defaultSTTTimeoutMS)
	setTimeout(ClassTTS, defaultTTSTimeoutMS)
	setTimeout(ClassLLM, defaultLLMTimeoutMS)

	if c.KillSwitches == nil {
		c.KillSwitches = map[string]string{}
	}
	return c
}

// TimeoutFor returns the upstream deadline for an endpoint class.
func (c Config) TimeoutFor(class string) time.Duration {
	return time.Duration(c.Timeouts[class]) * time.Millisecond
}
