// ABOUTME: Ordered registry of tools keyed by name
// ABOUTME: Dispatches calls requested by the agent service and traces each execution
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/harper/menu-agent/internal/tools")

var (
	ErrUnknownTool   = errors.New("unknown tool")
	ErrDuplicateTool = errors.New("duplicate tool")
)

// Registry holds tools in registration order
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry creates a registry with the given tools
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool)}
	if err := r.Register(tools...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds tools; a name can only be registered once
func (r *Registry) Register(tools ...Tool) error {
	for _, t := range tools {
		if t.Name() == "" {
			return fmt.Errorf("tool name must not be empty")
		}
		if _, exists := r.byName[t.Name()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name())
		}
		r.byName[t.Name()] = t
		r.tools = append(r.tools, t)
	}
	return nil
}

// Lookup returns the tool registered under name
func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}

// Tools returns the registered tools in order
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.tools)
}

// Call runs the named tool with raw JSON arguments
func (r *Registry) Call(ctx context.Context, callID, name string, args json.RawMessage) (string, error) {
	ctx, span := tracer.Start(ctx, "tool.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("gen_ai.operation.name", "execute_tool"),
		attribute.String("gen_ai.tool.call.id", callID),
		attribute.String("gen_ai.tool.name", name),
		attribute.String("gen_ai.tool.type", "function"),
	)

	t, err := r.Lookup(name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	out, err := t.Call(ctx, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return out, nil
}
