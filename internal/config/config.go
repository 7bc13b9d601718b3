// ABOUTME: Centralized configuration for the menu agent and knowledge base
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider values accepted by AGENT_PROVIDER
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the menu agent. It is built once by
// the CLI and passed to constructors; nothing else reads the environment.
type Config struct {
	// Agent service settings
	Provider        string
	OpenAIEndpoint  string
	OpenAIKey       string
	Deployment      string
	APIVersion      string
	ProjectEndpoint string
	PollInterval    time.Duration
	RequestTimeout  time.Duration

	// Search settings
	SearchEndpoint     string
	SearchKey          string
	SearchIndex        string
	SearchAPIVersion   string
	SearchPayloadField string

	// Observability
	LogLevel     string
	OTLPEndpoint string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	provider := strings.ToLower(getEnv("AGENT_PROVIDER", ProviderAzure))

	cfg := &Config{
		Provider:           provider,
		OpenAIEndpoint:     os.Getenv("AZURE_OPENAI_ENDPOINT"),
		OpenAIKey:          os.Getenv("AZURE_OPENAI_API_KEY"),
		Deployment:         getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o"),
		APIVersion:         getEnv("AZURE_OPENAI_DEPLOYMENT_VERSION", "2024-05-01-preview"),
		ProjectEndpoint:    os.Getenv("AZURE_AI_PROJECT_ENDPOINT"),
		PollInterval:       getEnvDuration("AGENT_POLL_INTERVAL", 500*time.Millisecond),
		RequestTimeout:     getEnvDuration("AGENT_REQUEST_TIMEOUT", 60*time.Second),
		SearchEndpoint:     os.Getenv("AZURE_SEARCH_ENDPOINT"),
		SearchKey:          os.Getenv("AZURE_SEARCH_KEY"),
		SearchIndex:        getEnv("AZURE_SEARCH_INDEX", "knowledge-base"),
		SearchAPIVersion:   getEnv("AZURE_SEARCH_API_VERSION", "2023-11-01"),
		SearchPayloadField: getEnv("AZURE_SEARCH_PAYLOAD_FIELD", "payload"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	// Plain OpenAI takes its own key and base URL
	if provider == ProviderOpenAI {
		cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
		cfg.OpenAIEndpoint = getEnv("OPENAI_BASE_URL", cfg.OpenAIEndpoint)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges only. Missing endpoints and keys are
// reported by MissingAgentSettings/MissingSearchSettings and otherwise
// left to fail in the SDK layer when used.
func (c *Config) Validate() error {
	if c.Provider != ProviderAzure && c.Provider != ProviderOpenAI {
		return fmt.Errorf("AGENT_PROVIDER must be %q or %q, got %q", ProviderAzure, ProviderOpenAI, c.Provider)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("AGENT_POLL_INTERVAL must be positive, got %v", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("AGENT_REQUEST_TIMEOUT must be positive, got %v", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// AgentEndpoint is the base URL used for assistant calls. The AI project
// endpoint wins over the OpenAI resource endpoint when both are set.
func (c *Config) AgentEndpoint() string {
	if c.ProjectEndpoint != "" {
		return c.ProjectEndpoint
	}
	return c.OpenAIEndpoint
}

// MissingAgentSettings lists the environment keys the agent service needs but that are empty
func (c *Config) MissingAgentSettings() []string {
	var missing []string
	if c.OpenAIKey == "" {
		if c.Provider == ProviderOpenAI {
			missing = append(missing, "OPENAI_API_KEY")
		} else {
			missing = append(missing, "AZURE_OPENAI_API_KEY")
		}
	}
	if c.Provider == ProviderAzure && c.AgentEndpoint() == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	return missing
}

// MissingSearchSettings lists the environment keys the search service needs but that are empty
func (c *Config) MissingSearchSettings() []string {
	var missing []string
	if c.SearchEndpoint == "" {
		missing = append(missing, "AZURE_SEARCH_ENDPOINT")
	}
	if c.SearchKey == "" {
		missing = append(missing, "AZURE_SEARCH_KEY")
	}
	return missing
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
