// ABOUTME: Knowledge base exposing document search as agent-callable tools
// ABOUTME: Wraps a Searcher and renders hits as previews or retrieval prompts
package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harper/menu-agent/internal/search"
	"github.com/harper/menu-agent/internal/tools"
)

const (
	ToolSearchDocs     = "search_docs"
	ToolAskWithContext = "ask_with_context"
)

// QueryArgs is the argument object both knowledge tools accept
type QueryArgs struct {
	Query string `json:"query" jsonschema_description:"Free-text search query"`
}

// KnowledgeBase runs queries against a search index on behalf of the agent
type KnowledgeBase struct {
	searcher search.Searcher
	logger   *slog.Logger
}

// New creates a knowledge base over searcher. A nil logger discards output.
func New(searcher search.Searcher, logger *slog.Logger) *KnowledgeBase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KnowledgeBase{searcher: searcher, logger: logger}
}

// SearchDocs returns a preview of the top documents matching query.
// Service errors propagate; per-hit decode errors are rendered inline.
func (kb *KnowledgeBase) SearchDocs(ctx context.Context, query string) (string, error) {
	resp, err := kb.searcher.Search(ctx, search.Request{Query: query, IncludeTotalCount: true})
	if err != nil {
		return "", fmt.Errorf("searching documents: %w", err)
	}

	attrs := []any{"query", query, "hits", len(resp.Hits)}
	if resp.Count != nil {
		attrs = append(attrs, "total", *resp.Count)
	}
	kb.logger.Debug("search_docs", attrs...)

	return FormatPreview(resp.Hits), nil
}

// AskWithContext builds a retrieval-augmented prompt from the top
// ContextTop hits. Malformed or empty hits are dropped.
func (kb *KnowledgeBase) AskWithContext(ctx context.Context, query string) (string, error) {
	resp, err := kb.searcher.Search(ctx, search.Request{Query: query, Top: ContextTop})
	if err != nil {
		return "", fmt.Errorf("searching documents: %w", err)
	}

	blocks, malformed := contextBlocks(resp.Hits)
	if malformed > 0 {
		kb.logger.Debug("skipped malformed payloads", "query", query, "count", malformed)
	}
	kb.logger.Debug("ask_with_context", "query", query, "hits", len(resp.Hits), "used", len(blocks))

	return wrapContext(query, blocks), nil
}

// Tools exposes the knowledge base operations for registration with an agent
func (kb *KnowledgeBase) Tools() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc(ToolSearchDocs,
			"Search documents in the knowledge base and return a short preview of the best matches.",
			func(ctx context.Context, args QueryArgs) (string, error) {
				return kb.SearchDocs(ctx, args.Query)
			}),
		tools.NewFunc(ToolAskWithContext,
			"Retrieve relevant documents and build a prompt that answers the question from their content.",
			func(ctx context.Context, args QueryArgs) (string, error) {
				return kb.AskWithContext(ctx, args.Query)
			}),
	}
}
