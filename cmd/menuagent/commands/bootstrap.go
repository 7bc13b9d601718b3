// ABOUTME: Shared startup for commands: env files, config, logging, tracing
// ABOUTME: Builds the tool registry and service clients from one Config
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/menu-agent/internal/config"
	"github.com/harper/menu-agent/internal/knowledge"
	"github.com/harper/menu-agent/internal/logging"
	"github.com/harper/menu-agent/internal/menu"
	"github.com/harper/menu-agent/internal/search"
	"github.com/harper/menu-agent/internal/telemetry"
	"github.com/harper/menu-agent/internal/tools"
)

var defaultEnvFiles = []string{"variables.env", ".env"}

// app carries the per-command dependencies
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	shutdown telemetry.ShutdownFunc
}

// loadEnvFiles loads dotenv files without overriding variables already set.
// Missing default files are fine; a missing explicit file is an error.
func loadEnvFiles(files []string) error {
	explicit := len(files) > 0
	if !explicit {
		files = defaultEnvFiles
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

// newApp loads configuration and sets up logging and tracing. Logs go to
// the command's stderr so stdout stays clean for results and MCP frames.
func newApp(cmd *cobra.Command) (*app, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   logging.ResolveLevel(level, verbose, quiet),
		NoColor: noColor(cmd.ErrOrStderr()),
	})

	shutdown, err := telemetry.Init(cmd.Context(), cfg.OTLPEndpoint, "menuagent", versionInfo.Version)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdown = func(context.Context) error { return nil }
	}

	return &app{cfg: cfg, logger: logger, shutdown: shutdown}, nil
}

// close flushes telemetry
func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("tracing shutdown failed", "error", err)
	}
}

// newSearchClient builds the search client, failing when endpoint or key are absent
func (a *app) newSearchClient() (*search.Client, error) {
	if missing := a.cfg.MissingSearchSettings(); len(missing) > 0 {
		a.logger.Warn("search service not fully configured", "missing", strings.Join(missing, ","))
	}
	return search.NewClient(search.Config{
		Endpoint:     a.cfg.SearchEndpoint,
		Index:        a.cfg.SearchIndex,
		APIKey:       a.cfg.SearchKey,
		APIVersion:   a.cfg.SearchAPIVersion,
		PayloadField: a.cfg.SearchPayloadField,
		Timeout:      a.cfg.RequestTimeout,
	})
}

func (a *app) newKnowledgeBase() (*knowledge.KnowledgeBase, error) {
	client, err := a.newSearchClient()
	if err != nil {
		return nil, err
	}
	return knowledge.New(client, a.logger), nil
}

// newRegistry registers the menu tools, plus the knowledge tools when a
// search endpoint is configured.
func (a *app) newRegistry(withKnowledge bool) (*tools.Registry, error) {
	reg, err := tools.NewRegistry(menu.NewPlugin().Tools()...)
	if err != nil {
		return nil, err
	}
	if !withKnowledge {
		return reg, nil
	}
	if a.cfg.SearchEndpoint == "" {
		a.logger.Debug("AZURE_SEARCH_ENDPOINT not set, knowledge tools disabled")
		return reg, nil
	}

	kb, err := a.newKnowledgeBase()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(kb.Tools()...); err != nil {
		return nil, err
	}
	return reg, nil
}

// jsonOutput reports whether results should be printed as JSON
func jsonOutput() bool {
	return outputFormat == "json"
}

// noColor disables ANSI colors for anything that is not a terminal
func noColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	info, err := f.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&os.ModeCharDevice == 0
}
