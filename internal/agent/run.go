// ABOUTME: Turn invocation: post a message, run the agent, and wait for its reply
// ABOUTME: Polls run status with backoff and submits outputs for requested tool calls
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harper/menu-agent/internal/util"
)

// Response is one message the agent produced during a turn
type Response struct {
	Name    string
	Role    string
	Content string
	Thread  *Thread
}

// RunError reports a run that ended in a non-successful terminal state
type RunError struct {
	RunID   string
	Status  openai.RunStatus
	Code    string
	Message string
}

func (e *RunError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
	}
	return fmt.Sprintf("run %s ended with status %s: %s (%s)", e.RunID, e.Status, e.Message, e.Code)
}

func newRunError(run openai.Run) *RunError {
	e := &RunError{RunID: run.ID, Status: run.Status}
	if run.LastError != nil {
		e.Code = string(run.LastError.Code)
		e.Message = run.LastError.Message
	}
	return e
}

// Invoke sends message on thread and returns the agent's replies in
// order. A nil thread starts a new conversation. The returned thread is
// non-nil whenever one exists, even when err is set, so the caller can
// release it.
func (a *Agent) Invoke(ctx context.Context, thread *Thread, message string) ([]Response, *Thread, error) {
	ctx, span := tracer.Start(ctx, "agent.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("gen_ai.operation.name", "invoke_agent"),
		attribute.String("gen_ai.agent.id", a.id),
		attribute.String("gen_ai.agent.name", a.def.Name),
	)

	fail := func(err error) ([]Response, *Thread, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, thread, err
	}

	if thread == nil {
		t, err := a.NewThread(ctx)
		if err != nil {
			return fail(err)
		}
		thread = t
	}
	span.SetAttributes(attribute.String("gen_ai.conversation.id", thread.ID))

	if _, err := a.svc.CreateMessage(ctx, thread.ID, openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: message,
	}); err != nil {
		return fail(fmt.Errorf("posting message: %w", err))
	}

	run, err := a.svc.CreateRun(ctx, thread.ID, openai.RunRequest{AssistantID: a.id})
	if err != nil {
		return fail(fmt.Errorf("starting run: %w", err))
	}

	run, err = a.wait(ctx, thread.ID, run)
	if err != nil {
		return fail(err)
	}

	responses, err := a.collect(ctx, thread, run.ID)
	if err != nil {
		return fail(err)
	}
	return responses, thread, nil
}

// wait polls run until it reaches a terminal state, answering tool-call
// requests along the way.
func (a *Agent) wait(ctx context.Context, threadID string, run openai.Run) (openai.Run, error) {
	attempt := 0
	for {
		switch run.Status {
		case openai.RunStatusCompleted:
			return run, nil
		case openai.RunStatusFailed, openai.RunStatusCancelled, openai.RunStatusExpired, openai.RunStatusIncomplete:
			return run, newRunError(run)
		case openai.RunStatusRequiresAction:
			next, err := a.submitToolOutputs(ctx, threadID, run)
			if err != nil {
				return run, err
			}
			run = next
			attempt = 0
			continue
		}

		attempt++
		delay := util.CalculateBackoff(a.pollInterval, a.maxPollInterval, attempt)
		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-time.After(delay):
		}

		next, err := a.svc.RetrieveRun(ctx, threadID, run.ID)
		if err != nil {
			return run, fmt.Errorf("polling run %s: %w", run.ID, err)
		}
		run = next
	}
}

// submitToolOutputs executes every tool call the run is waiting on.
// Failures are reported to the service as the call's output.
func (a *Agent) submitToolOutputs(ctx context.Context, threadID string, run openai.Run) (openai.Run, error) {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return run, fmt.Errorf("run %s requires action but lists no tool calls", run.ID)
	}

	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	outputs := make([]openai.ToolOutput, 0, len(calls))
	for _, call := range calls {
		out, err := a.registry.Call(ctx, call.ID, call.Function.Name, json.RawMessage(call.Function.Arguments))
		if err != nil {
			a.logger.Warn("tool call failed", "tool", call.Function.Name, "call_id", call.ID, "error", err)
			out = fmt.Sprintf("error: %v", err)
		} else {
			a.logger.Debug("tool call", "tool", call.Function.Name, "call_id", call.ID)
		}
		outputs = append(outputs, openai.ToolOutput{ToolCallID: call.ID, Output: out})
	}

	next, err := a.svc.SubmitToolOutputs(ctx, threadID, run.ID, openai.SubmitToolOutputsRequest{ToolOutputs: outputs})
	if err != nil {
		return run, fmt.Errorf("submitting tool outputs for run %s: %w", run.ID, err)
	}
	return next, nil
}

// collect returns the assistant messages the run added, oldest first
func (a *Agent) collect(ctx context.Context, thread *Thread, runID string) ([]Response, error) {
	order := "asc"
	list, err := a.svc.ListMessage(ctx, thread.ID, nil, &order, nil, nil, &runID)
	if err != nil {
		return nil, fmt.Errorf("listing messages for run %s: %w", runID, err)
	}

	var responses []Response
	for _, msg := range list.Messages {
		if msg.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		responses = append(responses, Response{
			Name:    a.def.Name,
			Role:    msg.Role,
			Content: messageText(msg),
			Thread:  thread,
		})
	}
	return responses, nil
}

func messageText(msg openai.Message) string {
	var parts []string
	for _, c := range msg.Content {
		if c.Text != nil {
			parts = append(parts, c.Text.Value)
		}
	}
	return strings.Join(parts, "\n")
}
