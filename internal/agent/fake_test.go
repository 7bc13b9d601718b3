// ABOUTME: Scripted in-memory stand-in for the Assistants API
// ABOUTME: Records every call so tests can assert on the conversation lifecycle
package agent

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type fakeService struct {
	assistants       []openai.AssistantRequest
	deletedAgents    []string
	threads          []openai.ThreadRequest
	deletedThreads   []string
	messages         []openai.MessageRequest
	submitted        [][]openai.ToolOutput
	retrieveCalls    int
	listedRunIDs     []string
	runScript        []openai.Run
	replies          map[string][]openai.Message
	createRunErr     error
	deleteThreadErr  error
	createMessageErr error
	runCount         int
}

func newFakeService() *fakeService {
	return &fakeService{replies: map[string][]openai.Message{}}
}

func (f *fakeService) nextRun(threadID string) openai.Run {
	if len(f.runScript) == 0 {
		return openai.Run{ID: fmt.Sprintf("run_%d", f.runCount), ThreadID: threadID, Status: openai.RunStatusCompleted}
	}
	run := f.runScript[0]
	f.runScript = f.runScript[1:]
	if run.ID == "" {
		run.ID = fmt.Sprintf("run_%d", f.runCount)
	}
	return run
}

func (f *fakeService) CreateAssistant(ctx context.Context, req openai.AssistantRequest) (openai.Assistant, error) {
	f.assistants = append(f.assistants, req)
	return openai.Assistant{ID: "asst_1", Name: req.Name, Model: req.Model}, nil
}

func (f *fakeService) DeleteAssistant(ctx context.Context, id string) (openai.AssistantDeleteResponse, error) {
	f.deletedAgents = append(f.deletedAgents, id)
	return openai.AssistantDeleteResponse{ID: id, Deleted: true}, nil
}

func (f *fakeService) CreateThread(ctx context.Context, req openai.ThreadRequest) (openai.Thread, error) {
	f.threads = append(f.threads, req)
	return openai.Thread{ID: fmt.Sprintf("thread_%d", len(f.threads))}, nil
}

func (f *fakeService) DeleteThread(ctx context.Context, id string) (openai.ThreadDeleteResponse, error) {
	if f.deleteThreadErr != nil {
		return openai.ThreadDeleteResponse{}, f.deleteThreadErr
	}
	f.deletedThreads = append(f.deletedThreads, id)
	return openai.ThreadDeleteResponse{ID: id, Deleted: true}, nil
}

func (f *fakeService) CreateMessage(ctx context.Context, threadID string, req openai.MessageRequest) (openai.Message, error) {
	if f.createMessageErr != nil {
		return openai.Message{}, f.createMessageErr
	}
	f.messages = append(f.messages, req)
	return openai.Message{ThreadID: threadID, Role: req.Role}, nil
}

func (f *fakeService) CreateRun(ctx context.Context, threadID string, req openai.RunRequest) (openai.Run, error) {
	if f.createRunErr != nil {
		return openai.Run{}, f.createRunErr
	}
	f.runCount++
	return f.nextRun(threadID), nil
}

func (f *fakeService) RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	f.retrieveCalls++
	run := f.nextRun(threadID)
	run.ID = runID
	return run, nil
}

func (f *fakeService) SubmitToolOutputs(ctx context.Context, threadID, runID string, req openai.SubmitToolOutputsRequest) (openai.Run, error) {
	f.submitted = append(f.submitted, req.ToolOutputs)
	run := f.nextRun(threadID)
	run.ID = runID
	return run, nil
}

func (f *fakeService) ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error) {
	if runID == nil {
		return openai.MessagesList{}, errors.New("runID filter expected")
	}
	f.listedRunIDs = append(f.listedRunIDs, *runID)
	return openai.MessagesList{Messages: f.replies[*runID]}, nil
}

func textMessage(role, text string) openai.Message {
	return openai.Message{
		Role:    role,
		Content: []openai.MessageContent{{Type: "text", Text: &openai.MessageText{Value: text}}},
	}
}

func toolCallRun(calls ...openai.ToolCall) openai.Run {
	return openai.Run{
		Status: openai.RunStatusRequiresAction,
		RequiredAction: &openai.RunRequiredAction{
			Type:              openai.RequiredActionTypeSubmitToolOutputs,
			SubmitToolOutputs: &openai.SubmitToolOutputs{ToolCalls: calls},
		},
	}
}

func toolCall(id, name, args string) openai.ToolCall {
	return openai.ToolCall{ID: id, Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: name, Arguments: args}}
}
