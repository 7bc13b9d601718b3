// ABOUTME: Tool abstraction for locally defined functions the hosted agent may call
// ABOUTME: Typed function tools get their JSON schema reflected from the argument struct
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Tool is a named, remotely callable function. Arguments arrive as the raw
// JSON object the caller produced; the result is plain text.
type Tool interface {
	Name() string
	Description() string
	Parameters() *jsonschema.Schema
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// NoArgs is the argument type for tools that take no parameters
type NoArgs struct{}

type funcTool[T any] struct {
	name        string
	description string
	schema      *jsonschema.Schema
	fn          func(ctx context.Context, args T) (string, error)
}

// NewFunc wraps fn as a Tool. The parameter schema is reflected from T,
// so field names come from json tags and descriptions from
// jsonschema_description tags.
func NewFunc[T any](name, description string, fn func(ctx context.Context, args T) (string, error)) Tool {
	return &funcTool[T]{
		name:        name,
		description: description,
		schema:      GenerateSchema[T](),
		fn:          fn,
	}
}

func (f *funcTool[T]) Name() string                   { return f.name }
func (f *funcTool[T]) Description() string            { return f.description }
func (f *funcTool[T]) Parameters() *jsonschema.Schema { return f.schema }

func (f *funcTool[T]) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var v T
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &v); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", f.name, err)
		}
	}
	return f.fn(ctx, v)
}

// GenerateSchema reflects T into an inline object schema suitable for
// function-calling APIs.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""
	if schema.Properties == nil {
		schema.Properties = jsonschema.NewProperties()
	}
	return schema
}
