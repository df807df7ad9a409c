package anthropic

import (
	"encoding/json"
	"fmt"
)

// ContentBlock is one element of a message's content. Concrete types are
// TextBlock, ImageBlock, ToolUseBlock, ToolResultBlock, and UnknownBlock for
// block types this SDK version does not know about.
type ContentBlock interface {
	BlockType() string
}

// TextBlock carries plain text content.
type TextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (TextBlock) BlockType() string { return "text" }

// NewTextBlock returns a text content block.
func NewTextBlock(text string) TextBlock {
	return TextBlock{Type: "text", Text: text}
}

// ImageSource describes inline image data.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ImageBlock carries an inline image.
type ImageBlock struct {
	Type   string      `json:"type"`
	Source ImageSource `json:"source"`
}

func (ImageBlock) BlockType() string { return "image" }

// NewImageBlock returns a base64-encoded inline image block.
func NewImageBlock(mediaType, base64Data string) ImageBlock {
	return ImageBlock{
		Type: "image",
		Source: ImageSource{
			Type:      "base64",
			MediaType: mediaType,
			Data:      base64Data,
		},
	}
}

// ToolUseBlock is the model requesting a tool invocation.
type ToolUseBlock struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (ToolUseBlock) BlockType() string { return "tool_use" }

// ToolResultBlock carries the caller's result for a prior tool_use block.
type ToolResultBlock struct {
	Type      string          `json:"type"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

func (ToolResultBlock) BlockType() string { return "tool_result" }

// NewToolResultBlock returns a tool_result block for the given tool_use ID.
// The content may be any JSON-encodable value.
func NewToolResultBlock(toolUseID string, content any, isError bool) (ToolResultBlock, error) {
	block := ToolResultBlock{Type: "tool_result", ToolUseID: toolUseID, IsError: isError}
	if content != nil {
		data, err := json.Marshal(content)
		if err != nil {
			return ToolResultBlock{}, fmt.Errorf("encode tool result: %w", err)
		}
		block.Content = data
	}
	return block, nil
}

// UnknownBlock preserves blocks with an unrecognized type discriminator
// verbatim. The protocol adds block types across versions; decoding must not
// fail on them.
type UnknownBlock struct {
	Type string
	Raw  json.RawMessage
}

func (b UnknownBlock) BlockType() string { return b.Type }

// MarshalJSON re-emits the block exactly as received.
func (b UnknownBlock) MarshalJSON() ([]byte, error) {
	return b.Raw, nil
}

// Content is an ordered sequence of content blocks. It decodes
// polymorphically by each block's own "type" discriminator.
type Content []ContentBlock

// UnmarshalJSON dispatches each element on its "type" field.
func (c *Content) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	blocks := make(Content, 0, len(raws))
	for i, raw := range raws {
		block, err := decodeContentBlock(raw)
		if err != nil {
			return fmt.Errorf("content block %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}
	*c = blocks
	return nil
}

func decodeContentBlock(raw json.RawMessage) (ContentBlock, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case "text":
		var block TextBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, err
		}
		return block, nil
	case "image":
		var block ImageBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, err
		}
		return block, nil
	case "tool_use":
		var block ToolUseBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, err
		}
		return block, nil
	case "tool_result":
		var block ToolResultBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, err
		}
		return block, nil
	default:
		return UnknownBlock{Type: head.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}
