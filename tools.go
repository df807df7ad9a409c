package anthropic

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Tool defines a tool the model may request via tool_use content blocks.
// InputSchema is a JSON Schema object describing the tool's input.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Validate checks the tool definition is well-formed.
func (t Tool) Validate() error {
	if !toolNamePattern.MatchString(t.Name) {
		return ConfigError{Reason: fmt.Sprintf("invalid tool name %q", t.Name)}
	}
	if len(t.InputSchema) == 0 {
		return ConfigError{Reason: fmt.Sprintf("tool %q missing input schema", t.Name)}
	}
	return nil
}

// NewTool creates a tool definition from any JSON-encodable schema value
// (map, struct, json.RawMessage, or string).
func NewTool(name, description string, schema any) (Tool, error) {
	var raw json.RawMessage
	switch v := schema.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	case string:
		raw = json.RawMessage(v)
	default:
		data, err := json.Marshal(schema)
		if err != nil {
			return Tool{}, fmt.Errorf("encode tool schema: %w", err)
		}
		raw = data
	}
	tool := Tool{Name: name, Description: description, InputSchema: raw}
	if err := tool.Validate(); err != nil {
		return Tool{}, err
	}
	return tool, nil
}

// ToolChoiceType selects the tool-use strategy for a request.
type ToolChoiceType string

const (
	ToolChoiceTypeAuto ToolChoiceType = "auto"
	ToolChoiceTypeAny  ToolChoiceType = "any"
	ToolChoiceTypeTool ToolChoiceType = "tool"
)

// ToolChoice controls when and how the model should use tools.
type ToolChoice struct {
	Type ToolChoiceType `json:"type"`
	Name string         `json:"name,omitempty"`
}

// ToolChoiceAuto lets the model decide when to use tools.
func ToolChoiceAuto() *ToolChoice {
	return &ToolChoice{Type: ToolChoiceTypeAuto}
}

// ToolChoiceAny forces the model to use some tool.
func ToolChoiceAny() *ToolChoice {
	return &ToolChoice{Type: ToolChoiceTypeAny}
}

// ToolChoiceNamed forces the model to use the named tool.
func ToolChoiceNamed(name string) *ToolChoice {
	return &ToolChoice{Type: ToolChoiceTypeTool, Name: name}
}
