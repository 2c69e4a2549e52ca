package llm

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Known hosted providers and their OpenAI-compatible base URLs.
const (
	ProviderOpenAI   = "openai"
	ProviderZhipu    = "zhipu"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

var providerURLs = map[string]string{
	ProviderOpenAI:   "https://api.openai.com/v1",
	ProviderZhipu:    "https://open.bigmodel.cn/api/paas/v4",
	ProviderDeepSeek: "https://api.deepseek.com/v1",
	ProviderOllama:   "http://localhost:11434/v1",
}

// Config holds all configuration for the completion backend.
type Config struct {
	Provider       string  `toml:"provider"`
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"` // overrides the provider table when set
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	LogCalls       bool    `toml:"log_calls"`
}

// DefaultConfig returns a Config targeting Zhipu's glm-4-flash with the
// pipeline's fixed sampling defaults. No API key is set.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderZhipu,
		Model:          "glm-4-flash",
		Temperature:    0.3,
		TimeoutSeconds: 60,
	}
}

// ProviderURL returns the base URL for a known provider name.
func ProviderURL(provider string) (string, bool) {
	u, ok := providerURLs[strings.ToLower(strings.TrimSpace(provider))]
	return u, ok
}

// EffectiveBaseURL resolves the endpoint: explicit BaseURL first, then the
// provider table, then the Zhipu default.
func (c Config) EffectiveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if u, ok := ProviderURL(c.Provider); ok {
		return u
	}
	return providerURLs[ProviderZhipu]
}

// Timeout returns the per-call timeout, falling back to 60s when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Configured reports whether a credential is present.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// apiKeyEnvVars are consulted in order; the first non-empty value wins.
var apiKeyEnvVars = []string{"LLM_API_KEY", "OPENAI_API_KEY", "ZHIPU_API_KEY"}

// LoadConfig reads backend configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overlays environment variables onto cfg. Unparseable numeric
// values are ignored.
func ApplyEnv(cfg *Config) {
	for _, name := range apiKeyEnvVars {
		if v := os.Getenv(name); v != "" {
			cfg.APIKey = v
			break
		}
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 2 {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
}
