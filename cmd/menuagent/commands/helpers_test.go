// ABOUTME: Shared helpers for command tests
// ABOUTME: Isolates the environment and runs the root command with captured output

package commands

import (
	"bytes"
	"testing"
)

var configKeys = []string{
	"AGENT_PROVIDER", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_DEPLOYMENT_NAME", "AZURE_OPENAI_DEPLOYMENT_VERSION",
	"AZURE_AI_PROJECT_ENDPOINT", "OPENAI_API_KEY", "OPENAI_BASE_URL",
	"AZURE_SEARCH_ENDPOINT", "AZURE_SEARCH_KEY", "AZURE_SEARCH_INDEX",
	"AZURE_SEARCH_API_VERSION", "AZURE_SEARCH_PAYLOAD_FIELD",
	"AGENT_POLL_INTERVAL", "AGENT_REQUEST_TIMEOUT", "LOG_LEVEL",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "NO_COLOR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

// runRoot executes the CLI with args and returns stdout and stderr
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
