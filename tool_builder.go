package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ToolHandler executes a tool_use request and returns a JSON-encodable result.
type ToolHandler func(ctx context.Context, input json.RawMessage) (any, error)

// ToolBuilder pairs tool definitions with handler functions so the schema
// sent to the API and the code executing tool calls stay in sync.
//
//	type WeatherArgs struct {
//		Location string `json:"location" jsonschema:"description=City name"`
//	}
//
//	builder := anthropic.NewToolBuilder()
//	anthropic.AddFunc(builder, "get_weather", "Get current weather",
//		func(ctx context.Context, args WeatherArgs) (any, error) {
//			return lookupWeather(ctx, args.Location)
//		})
//	tools := builder.Definitions()
type ToolBuilder struct {
	entries []toolEntry
}

type toolEntry struct {
	tool    Tool
	handler ToolHandler
}

// NewToolBuilder creates an empty ToolBuilder.
func NewToolBuilder() *ToolBuilder {
	return &ToolBuilder{}
}

// Add registers a tool definition with its handler.
func (b *ToolBuilder) Add(tool Tool, handler ToolHandler) *ToolBuilder {
	b.entries = append(b.entries, toolEntry{tool: tool, handler: handler})
	return b
}

// AddFunc registers a tool whose input schema is derived from the handler's
// argument struct type. Schema derivation failures panic: they indicate a
// defect in the argument type, not a runtime condition.
func AddFunc[T any](b *ToolBuilder, name, description string, handler func(ctx context.Context, args T) (any, error)) *ToolBuilder {
	tool, err := ToolFromType[T](name, description)
	if err != nil {
		panic(fmt.Sprintf("tool schema for %s: %v", name, err))
	}
	return b.Add(tool, func(ctx context.Context, input json.RawMessage) (any, error) {
		var args T
		if err := json.Unmarshal(input, &args); err != nil {
			return nil, fmt.Errorf("tool %s: decode input: %w", name, err)
		}
		return handler(ctx, args)
	})
}

// Definitions returns the tool definitions for MessageRequest.Tools.
func (b *ToolBuilder) Definitions() []Tool {
	defs := make([]Tool, len(b.entries))
	for i, entry := range b.entries {
		defs[i] = entry.tool
	}
	return defs
}

// Registry returns a dispatcher for executing tool_use blocks against the
// registered handlers.
func (b *ToolBuilder) Registry() *ToolRegistry {
	handlers := make(map[string]ToolHandler, len(b.entries))
	for _, entry := range b.entries {
		handlers[entry.tool.Name] = entry.handler
	}
	return &ToolRegistry{handlers: handlers}
}

// ToolRegistry dispatches tool_use blocks to their handlers and packages the
// results as tool_result content blocks.
type ToolRegistry struct {
	handlers map[string]ToolHandler
}

// Execute runs the handler registered for the block's tool name. Handler
// failures are returned to the model as is_error tool results, not as Go
// errors; only an unregistered tool name is an error here.
func (r *ToolRegistry) Execute(ctx context.Context, block ToolUseBlock) (ToolResultBlock, error) {
	handler, ok := r.handlers[block.Name]
	if !ok {
		return ToolResultBlock{}, ConfigError{Reason: fmt.Sprintf("no handler registered for tool %q", block.Name)}
	}
	result, err := handler(ctx, block.Input)
	if err != nil {
		return NewToolResultBlock(block.ID, err.Error(), true)
	}
	return NewToolResultBlock(block.ID, result, false)
}

// ToolFromType derives a tool definition whose input schema reflects the
// struct type T. Field names, requiredness, and descriptions follow the
// json and jsonschema struct tags.
func ToolFromType[T any](name, description string) (Tool, error) {
	reflector := jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	var zero T
	schema := reflector.Reflect(&zero)
	schema.Version = ""
	data, err := json.Marshal(schema)
	if err != nil {
		return Tool{}, fmt.Errorf("encode schema: %w", err)
	}
	return NewTool(name, description, json.RawMessage(data))
}

// MustToolFromType is ToolFromType panicking on error, for static definitions.
func MustToolFromType[T any](name, description string) Tool {
	tool, err := ToolFromType[T](name, description)
	if err != nil {
		panic(err)
	}
	return tool
}
