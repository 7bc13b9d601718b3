// ABOUTME: Formatting of raw search hits into preview blocks and retrieval prompts
// ABOUTME: Pure functions; payload decode failures never abort a batch
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/menu-agent/internal/search"
)

const (
	// PreviewLimit caps the number of blocks SearchDocs returns, error blocks included
	PreviewLimit = 3
	// PreviewWords caps each preview excerpt, counted in whitespace-delimited tokens
	PreviewWords = 500
	// ContextTop is how many hits AskWithContext requests from the service
	ContextTop = 5

	UnknownFile = "Unknown file"
	NoText      = "[No text]"
	NoResults   = "No relevant documents found."

	previewSeparator = "\n\n---\n\n"
	contextSeparator = "\n\n"
)

var errNotObject = errors.New("payload is not a JSON object")

// Document is the decoded form of a hit payload
type Document struct {
	File *string `json:"file"`
	Text *string `json:"text"`
}

// DecodePayload parses a hit payload. Anything other than a JSON object
// with optional string fields "file" and "text" is an error.
func DecodePayload(raw string) (Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Document{}, err
	}
	if fields == nil {
		return Document{}, errNotObject
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// FileOr returns the file label or def when absent
func (d Document) FileOr(def string) string {
	if d.File == nil {
		return def
	}
	return *d.File
}

// TextOr returns the body or def when absent
func (d Document) TextOr(def string) string {
	if d.Text == nil {
		return def
	}
	return *d.Text
}

// TruncateWords keeps at most n whitespace-delimited tokens, rejoined with single spaces
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// FormatPreview renders up to PreviewLimit hits in service order. A hit
// whose payload cannot be decoded yields an inline error block and still
// counts toward the limit.
func FormatPreview(hits []search.Hit) string {
	var blocks []string

	for _, hit := range hits {
		doc, err := DecodePayload(hit.Payload)
		if err != nil {
			blocks = append(blocks, fmt.Sprintf("❌ Error parsing payload: %v", err))
		} else {
			excerpt := TruncateWords(doc.TextOr(NoText), PreviewWords)
			blocks = append(blocks, fmt.Sprintf("📄 %s\n%s", doc.FileOr(UnknownFile), excerpt))
		}

		if len(blocks) >= PreviewLimit {
			break
		}
	}

	return strings.Join(blocks, previewSeparator)
}

// contextBlocks returns one labelled block per usable hit and the number
// of hits skipped because their payload could not be decoded.
func contextBlocks(hits []search.Hit) ([]string, int) {
	var blocks []string
	malformed := 0

	for _, hit := range hits {
		doc, err := DecodePayload(hit.Payload)
		if err != nil {
			malformed++
			continue
		}
		text := doc.TextOr("")
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[📄 %s]\n%s", doc.FileOr(UnknownFile), text))
	}

	return blocks, malformed
}

// BuildContextPrompt wraps every usable hit in a retrieval-augmented prompt
// for query. Malformed payloads and empty bodies are dropped silently;
// when nothing usable remains NoResults is returned.
func BuildContextPrompt(query string, hits []search.Hit) string {
	blocks, _ := contextBlocks(hits)
	return wrapContext(query, blocks)
}

func wrapContext(query string, blocks []string) string {
	if len(blocks) == 0 {
		return NoResults
	}
	return "Based on the following documents:\n---\n" +
		strings.Join(blocks, contextSeparator) +
		"\n---\nAnswer the question: " + query
}
