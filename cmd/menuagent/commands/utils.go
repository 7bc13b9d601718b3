// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output helpers used by search, ask, and tools
package commands

import (
	"encoding/json"
	"fmt"
	"io"
)

// queryResult is the JSON shape printed by search and ask
type queryResult struct {
	Query  string `json:"query"`
	Result string `json:"result"`
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
