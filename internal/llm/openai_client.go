// ABOUTME: Client factory for the hosted agent service
// ABOUTME: Builds a go-openai client for either Azure OpenAI or the public OpenAI API
package llm

import (
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/menu-agent/internal/config"
)

// DefaultAzureConfig leaves the assistants beta header empty
const assistantVersion = "v2"

// ClientConfig holds the connection settings for the agent service
type ClientConfig struct {
	Provider   string
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

// ConfigFrom extracts client settings from the application config
func ConfigFrom(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		Provider:   cfg.Provider,
		Endpoint:   cfg.AgentEndpoint(),
		APIKey:     cfg.OpenAIKey,
		Deployment: cfg.Deployment,
		APIVersion: cfg.APIVersion,
		Timeout:    cfg.RequestTimeout,
	}
}

// NewClient creates a go-openai client. Azure requests are routed to the
// configured deployment regardless of the model name the caller sends.
func NewClient(cc *ClientConfig) (*openai.Client, error) {
	if cc.APIKey == "" {
		return nil, fmt.Errorf("agent service API key is required")
	}

	var clientConfig openai.ClientConfig
	switch cc.Provider {
	case config.ProviderAzure, "":
		if cc.Endpoint == "" {
			return nil, fmt.Errorf("azure endpoint is required")
		}
		clientConfig = openai.DefaultAzureConfig(cc.APIKey, cc.Endpoint)
		clientConfig.AssistantVersion = assistantVersion
		if cc.APIVersion != "" {
			clientConfig.APIVersion = cc.APIVersion
		}
		deployment := cc.Deployment
		clientConfig.AzureModelMapperFunc = func(model string) string {
			if deployment != "" {
				return deployment
			}
			return model
		}
	case config.ProviderOpenAI:
		clientConfig = openai.DefaultConfig(cc.APIKey)
		if cc.Endpoint != "" {
			clientConfig.BaseURL = cc.Endpoint
		}
	default:
		return nil, fmt.Errorf("unknown agent provider %q", cc.Provider)
	}

	if cc.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cc.Timeout}
	}

	return openai.NewClientWithConfig(clientConfig), nil
}
