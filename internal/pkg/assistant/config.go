package assistant

import (
	"time"

	"github.com/dealerseo/seodash/internal/pkg/env"
)

// Config holds the Mistral-compatible API settings.
type Config struct {
	APIKey  string
	AgentID string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		APIKey:  env.GetEnv("MISTRAL_API_KEY", ""),
		AgentID: env.GetEnv("MISTRAL_AGENT_ID", ""),
		Model:   env.GetEnv("MISTRAL_MODEL", "mistral-small-latest"),
		BaseURL: env.GetEnv("MISTRAL_API_BASE", "https://api.mistral.ai"),
		Timeout: time.Duration(env.GetEnvInt("MISTRAL_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// Enabled reports whether an API key is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.APIKey != ""
}
