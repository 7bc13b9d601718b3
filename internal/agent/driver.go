// ABOUTME: Scripted conversation driver that feeds fixed turns to an agent
// ABOUTME: Prints role-tagged output and always releases the thread it opened
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultScript is the demo conversation
var DefaultScript = []string{
	"Hello",
	"What is the special soup?",
	"What is the special drink?",
	"How much is that?",
	"Thank you",
}

const releaseTimeout = 30 * time.Second

// Invoker runs one conversational turn
type Invoker interface {
	Name() string
	Invoke(ctx context.Context, thread *Thread, message string) ([]Response, *Thread, error)
}

// Driver sends turns to an agent one at a time, carrying the thread forward
type Driver struct {
	Agent  Invoker
	Out    io.Writer
	JSON   bool
	Logger *slog.Logger
}

// Transcript line emitted in JSON mode
type turnRecord struct {
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
	Thread  string `json:"thread_id,omitempty"`
}

// Run plays turns in order. The thread opened by the first turn is
// released on every exit path, including errors and cancellation.
func (d *Driver) Run(ctx context.Context, turns []string) (err error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var thread *Thread
	defer func() {
		if thread == nil {
			return
		}
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if derr := thread.Delete(releaseCtx); derr != nil {
			if err == nil {
				err = derr
				return
			}
			logger.Warn("thread release failed", "thread_id", thread.ID, "error", derr)
			return
		}
		logger.Debug("thread released", "thread_id", thread.ID)
	}()

	for _, turn := range turns {
		if err := d.emit(turnRecord{Role: "user", Content: turn}); err != nil {
			return err
		}

		responses, next, err := d.Agent.Invoke(ctx, thread, turn)
		if next != nil {
			thread = next
		}
		if err != nil {
			return fmt.Errorf("turn %q: %w", turn, err)
		}

		for _, r := range responses {
			if err := d.emit(turnRecord{Role: r.Role, Name: r.Name, Content: r.Content, Thread: thread.ID}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Driver) emit(rec turnRecord) error {
	if d.JSON {
		return json.NewEncoder(d.Out).Encode(rec)
	}

	var err error
	if rec.Role == "user" {
		_, err = fmt.Fprintf(d.Out, "# user: '%s'\n", rec.Content)
	} else {
		_, err = fmt.Fprintf(d.Out, "# %s: %s\n", rec.Name, rec.Content)
	}
	return err
}
