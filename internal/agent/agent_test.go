// ABOUTME: Tests for agent creation, run polling, and tool-call handling
// ABOUTME: Runs against the scripted fake service with millisecond poll intervals
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/menu-agent/internal/menu"
	"github.com/harper/menu-agent/internal/tools"
)

var testDef = Definition{Model: "gpt-4o", Name: DefaultName, Instructions: DefaultInstructions}

func fastOptions() Options {
	return Options{PollInterval: time.Millisecond, MaxPollInterval: 2 * time.Millisecond}
}

func menuRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg, err := tools.NewRegistry(menu.NewPlugin().Tools()...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func newTestAgent(t *testing.T, svc *fakeService) *Agent {
	t.Helper()
	a, err := Create(context.Background(), svc, testDef, menuRegistry(t), fastOptions())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return a
}

func TestCreate_RegistersFunctionTools(t *testing.T) {
	svc := newFakeService()
	a := newTestAgent(t, svc)

	if a.ID() != "asst_1" || a.Name() != DefaultName {
		t.Errorf("agent = %q/%q", a.ID(), a.Name())
	}
	if len(svc.assistants) != 1 {
		t.Fatalf("expected one CreateAssistant call, got %d", len(svc.assistants))
	}

	req := svc.assistants[0]
	if req.Model != "gpt-4o" || *req.Name != DefaultName || *req.Instructions != DefaultInstructions {
		t.Errorf("unexpected request: model=%q name=%q", req.Model, *req.Name)
	}

	var names []string
	for _, tool := range req.Tools {
		if tool.Type != openai.AssistantToolTypeFunction {
			t.Errorf("tool type = %q, want function", tool.Type)
		}
		names = append(names, tool.Function.Name)
	}
	if diff := cmp.Diff([]string{menu.ToolGetSpecials, menu.ToolGetItemPrice}, names); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}

	params, err := json.Marshal(req.Tools[1].Function.Parameters)
	if err != nil {
		t.Fatalf("marshal parameters: %v", err)
	}
	if !strings.Contains(string(params), `"menu_item"`) {
		t.Errorf("get_item_price parameters missing menu_item: %s", params)
	}
}

func TestCreate_NilRegistry(t *testing.T) {
	svc := newFakeService()
	if _, err := Create(context.Background(), svc, testDef, nil, Options{}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(svc.assistants[0].Tools) != 0 {
		t.Errorf("expected no tools, got %d", len(svc.assistants[0].Tools))
	}
}

func TestInvoke_NewThreadAndReply(t *testing.T) {
	svc := newFakeService()
	svc.runScript = []openai.Run{
		{Status: openai.RunStatusQueued},
		{Status: openai.RunStatusInProgress},
		{Status: openai.RunStatusCompleted},
	}
	svc.replies["run_1"] = []openai.Message{
		textMessage("user", "Hello"),
		textMessage("assistant", "Hi there!"),
	}
	a := newTestAgent(t, svc)

	responses, thread, err := a.Invoke(context.Background(), nil, "Hello")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if thread == nil || thread.ID != "thread_1" {
		t.Fatalf("thread = %+v, want thread_1", thread)
	}
	if thread.ConversationID == "" || svc.threads[0].Metadata["conversation_id"] != thread.ConversationID {
		t.Errorf("conversation id not recorded in thread metadata: %+v", svc.threads[0].Metadata)
	}
	if svc.retrieveCalls != 2 {
		t.Errorf("RetrieveRun calls = %d, want 2", svc.retrieveCalls)
	}

	want := []Response{{Name: DefaultName, Role: "assistant", Content: "Hi there!"}}
	if diff := cmp.Diff(want, responses, cmpopts.IgnoreFields(Response{}, "Thread")); diff != "" {
		t.Fatalf("responses mismatch (-want +got):\n%s", diff)
	}
	if responses[0].Thread != thread {
		t.Error("response should carry the turn's thread")
	}
	if diff := cmp.Diff([]openai.MessageRequest{{Role: "user", Content: "Hello"}}, svc.messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoke_ReusesThread(t *testing.T) {
	svc := newFakeService()
	a := newTestAgent(t, svc)
	ctx := context.Background()

	_, thread, err := a.Invoke(ctx, nil, "Hello")
	if err != nil {
		t.Fatalf("first Invoke() error = %v", err)
	}
	_, again, err := a.Invoke(ctx, thread, "Thank you")
	if err != nil {
		t.Fatalf("second Invoke() error = %v", err)
	}
	if again != thread {
		t.Error("second turn should carry the same thread forward")
	}
	if len(svc.threads) != 1 {
		t.Errorf("CreateThread calls = %d, want 1", len(svc.threads))
	}
	if diff := cmp.Diff([]string{"run_1", "run_2"}, svc.listedRunIDs); diff != "" {
		t.Errorf("listed runs mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoke_SubmitsToolOutputs(t *testing.T) {
	svc := newFakeService()
	svc.runScript = []openai.Run{
		toolCallRun(
			toolCall("call_a", menu.ToolGetSpecials, "{}"),
			toolCall("call_b", menu.ToolGetItemPrice, `{"menu_item":"Chai Tea"}`),
		),
		{Status: openai.RunStatusInProgress},
		{Status: openai.RunStatusCompleted},
	}
	svc.replies["run_1"] = []openai.Message{textMessage("assistant", "The Chai Tea is $9.99.")}
	a := newTestAgent(t, svc)

	responses, _, err := a.Invoke(context.Background(), nil, "How much is that?")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	want := [][]openai.ToolOutput{{
		{ToolCallID: "call_a", Output: menu.Specials},
		{ToolCallID: "call_b", Output: menu.ItemPrice},
	}}
	if diff := cmp.Diff(want, svc.submitted); diff != "" {
		t.Errorf("tool outputs mismatch (-want +got):\n%s", diff)
	}
	if len(responses) != 1 || responses[0].Content != "The Chai Tea is $9.99." {
		t.Errorf("responses = %+v", responses)
	}
}

func TestInvoke_ToolFailuresReportedAsOutput(t *testing.T) {
	svc := newFakeService()
	svc.runScript = []openai.Run{
		toolCallRun(
			toolCall("call_a", "order_pizza", "{}"),
			toolCall("call_b", menu.ToolGetItemPrice, `{"menu_item": 3}`),
		),
		{Status: openai.RunStatusCompleted},
	}
	a := newTestAgent(t, svc)

	if _, _, err := a.Invoke(context.Background(), nil, "Order a pizza"); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(svc.submitted) != 1 || len(svc.submitted[0]) != 2 {
		t.Fatalf("submitted = %+v", svc.submitted)
	}
	for _, out := range svc.submitted[0] {
		text, _ := out.Output.(string)
		if !strings.HasPrefix(text, "error: ") {
			t.Errorf("output for %s = %q, want error text", out.ToolCallID, text)
		}
	}
}

func TestInvoke_FailedRun(t *testing.T) {
	svc := newFakeService()
	svc.runScript = []openai.Run{{
		Status:    openai.RunStatusFailed,
		LastError: &openai.RunLastError{Code: openai.RunErrorRateLimitExceeded, Message: "slow down"},
	}}
	a := newTestAgent(t, svc)

	_, thread, err := a.Invoke(context.Background(), nil, "Hello")
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected *RunError, got %v", err)
	}
	if runErr.Status != openai.RunStatusFailed || runErr.Code != "rate_limit_exceeded" || runErr.Message != "slow down" {
		t.Errorf("RunError = %+v", runErr)
	}
	if thread == nil {
		t.Error("thread should be returned on failure so it can be released")
	}
}

func TestInvoke_RequiresActionWithoutCalls(t *testing.T) {
	svc := newFakeService()
	svc.runScript = []openai.Run{{Status: openai.RunStatusRequiresAction}}
	a := newTestAgent(t, svc)

	if _, _, err := a.Invoke(context.Background(), nil, "Hello"); err == nil {
		t.Error("expected error for requires_action without tool calls")
	}
}

func TestInvoke_ContextCancelledWhilePolling(t *testing.T) {
	svc := newFakeService()
	for i := 0; i < 100; i++ {
		svc.runScript = append(svc.runScript, openai.Run{Status: openai.RunStatusInProgress})
	}
	a, err := Create(context.Background(), svc, testDef, nil, Options{PollInterval: time.Hour})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, thread, err := a.Invoke(ctx, nil, "Hello")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if thread == nil {
		t.Error("thread should be returned on cancellation")
	}
}

func TestInvoke_CreateRunError(t *testing.T) {
	svc := newFakeService()
	svc.createRunErr = errors.New("401 unauthorized")
	a := newTestAgent(t, svc)

	_, _, err := a.Invoke(context.Background(), nil, "Hello")
	if err == nil || !strings.Contains(err.Error(), "starting run") {
		t.Errorf("expected wrapped run error, got %v", err)
	}
}

func TestAgentDelete(t *testing.T) {
	svc := newFakeService()
	a := newTestAgent(t, svc)

	if err := a.Delete(context.Background()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if diff := cmp.Diff([]string{"asst_1"}, svc.deletedAgents); diff != "" {
		t.Errorf("deleted agents mismatch (-want +got):\n%s", diff)
	}
}

func TestThreadDelete_Idempotent(t *testing.T) {
	svc := newFakeService()
	thread := &Thread{ID: "thread_9", svc: svc}
	ctx := context.Background()

	if err := thread.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := thread.Delete(ctx); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if !thread.Released() {
		t.Error("thread should report released")
	}
	if len(svc.deletedThreads) != 1 {
		t.Errorf("DeleteThread calls = %d, want 1", len(svc.deletedThreads))
	}

	var none *Thread
	if err := none.Delete(ctx); err != nil {
		t.Errorf("nil thread Delete() error = %v", err)
	}
}
