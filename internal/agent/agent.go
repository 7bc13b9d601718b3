// ABOUTME: Hosted agent definition and turn invocation over the Assistants API
// ABOUTME: Registers local tools with the service and answers its tool-call requests
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harper/menu-agent/internal/tools"
)

var tracer = otel.Tracer("github.com/harper/menu-agent/internal/agent")

const (
	DefaultName         = "restaurant-agent"
	DefaultInstructions = "A restaurant agent that provides menu information."

	defaultPollInterval    = 500 * time.Millisecond
	defaultMaxPollInterval = 5 * time.Second
)

// Service is the subset of the Assistants API the agent depends on.
// *openai.Client satisfies it.
type Service interface {
	CreateAssistant(ctx context.Context, request openai.AssistantRequest) (openai.Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) (openai.AssistantDeleteResponse, error)
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	DeleteThread(ctx context.Context, threadID string) (openai.ThreadDeleteResponse, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID string, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

var _ Service = (*openai.Client)(nil)

// Definition describes the agent to create on the service
type Definition struct {
	Model        string
	Name         string
	Instructions string
}

// Options tune how the agent waits on runs
type Options struct {
	PollInterval    time.Duration
	MaxPollInterval time.Duration
	Logger          *slog.Logger
}

// Agent is a handle to an agent definition held by the service
type Agent struct {
	id       string
	def      Definition
	svc      Service
	registry *tools.Registry

	pollInterval    time.Duration
	maxPollInterval time.Duration
	logger          *slog.Logger
}

// Create registers def on the service with one function tool per entry
// in registry. A nil registry creates an agent without tools.
func Create(ctx context.Context, svc Service, def Definition, registry *tools.Registry, opts Options) (*Agent, error) {
	ctx, span := tracer.Start(ctx, "agent.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("gen_ai.operation.name", "create_agent"),
		attribute.String("gen_ai.agent.name", def.Name),
		attribute.String("gen_ai.request.model", def.Model),
	)

	if registry == nil {
		registry, _ = tools.NewRegistry()
	}

	req := openai.AssistantRequest{
		Model:        def.Model,
		Name:         &def.Name,
		Instructions: &def.Instructions,
		Tools:        assistantTools(registry),
	}

	asst, err := svc.CreateAssistant(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("creating agent %s: %w", def.Name, err)
	}
	span.SetAttributes(attribute.String("gen_ai.agent.id", asst.ID))

	a := &Agent{
		id:              asst.ID,
		def:             def,
		svc:             svc,
		registry:        registry,
		pollInterval:    opts.PollInterval,
		maxPollInterval: opts.MaxPollInterval,
		logger:          opts.Logger,
	}
	if a.pollInterval <= 0 {
		a.pollInterval = defaultPollInterval
	}
	if a.maxPollInterval <= 0 {
		a.maxPollInterval = defaultMaxPollInterval
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}

	a.logger.Debug("agent created", "agent_id", a.id, "name", def.Name, "tools", registry.Len())
	return a, nil
}

func assistantTools(registry *tools.Registry) []openai.AssistantTool {
	var out []openai.AssistantTool
	for _, t := range registry.Tools() {
		out = append(out, openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

// ID returns the service-assigned agent id
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name
func (a *Agent) Name() string { return a.def.Name }

// Delete removes the agent definition from the service
func (a *Agent) Delete(ctx context.Context) error {
	if _, err := a.svc.DeleteAssistant(ctx, a.id); err != nil {
		return fmt.Errorf("deleting agent %s: %w", a.id, err)
	}
	a.logger.Debug("agent deleted", "agent_id", a.id)
	return nil
}

// NewThread starts an empty conversation on the service
func (a *Agent) NewThread(ctx context.Context) (*Thread, error) {
	conversationID := uuid.New().String()
	th, err := a.svc.CreateThread(ctx, openai.ThreadRequest{
		Metadata: map[string]any{"conversation_id": conversationID},
	})
	if err != nil {
		return nil, fmt.Errorf("creating thread: %w", err)
	}
	a.logger.Debug("thread created", "thread_id", th.ID, "conversation_id", conversationID)
	return &Thread{ID: th.ID, ConversationID: conversationID, svc: a.svc}, nil
}
