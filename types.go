package anthropic

import (
	"net/http"
	"strings"
)

// MessageParam is a single conversation turn in a request.
type MessageParam struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// NewUserMessage returns a user turn with a single text block.
func NewUserMessage(text string) MessageParam {
	return MessageParam{Role: RoleUser, Content: Content{NewTextBlock(text)}}
}

// NewAssistantMessage returns an assistant turn with a single text block.
func NewAssistantMessage(text string) MessageParam {
	return MessageParam{Role: RoleAssistant, Content: Content{NewTextBlock(text)}}
}

// MessageRequest mirrors the /messages JSON contract. Optional fields use
// pointer or zero-value semantics and are only serialized when set.
type MessageRequest struct {
	Model         string
	Messages      []MessageParam
	MaxTokens     int64
	System        string
	Temperature   *float64
	TopP          *float64
	TopK          *int64
	StopSequences []string
	Tools         []Tool
	ToolChoice    *ToolChoice
	Metadata      map[string]string
}

// Validate returns an error when required fields are missing.
func (r MessageRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return ConfigError{Reason: "model is required"}
	}
	if len(r.Messages) == 0 {
		return ConfigError{Reason: "at least one message is required"}
	}
	if r.MaxTokens <= 0 {
		return ConfigError{Reason: "max_tokens must be positive"}
	}
	return nil
}

type messageRequestPayload struct {
	Model         string            `json:"model"`
	Messages      []MessageParam    `json:"messages"`
	MaxTokens     int64             `json:"max_tokens"`
	System        string            `json:"system,omitempty"`
	Temperature   *float64          `json:"temperature,omitempty"`
	TopP          *float64          `json:"top_p,omitempty"`
	TopK          *int64            `json:"top_k,omitempty"`
	StopSequences []string          `json:"stop_sequences,omitempty"`
	Tools         []Tool            `json:"tools,omitempty"`
	ToolChoice    *ToolChoice       `json:"tool_choice,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Stream        bool              `json:"stream,omitempty"`
}

func newMessageRequestPayload(req MessageRequest) messageRequestPayload {
	payload := messageRequestPayload{
		Model:         req.Model,
		Messages:      req.Messages,
		MaxTokens:     req.MaxTokens,
		System:        req.System,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		TopK:          req.TopK,
		StopSequences: req.StopSequences,
		Tools:         req.Tools,
		ToolChoice:    req.ToolChoice,
	}
	if len(req.Metadata) > 0 {
		payload.Metadata = req.Metadata
	}
	return payload
}

// Usage reports token consumption for a request.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int64 { return u.InputTokens + u.OutputTokens }

// MessageResponse is the full message payload returned by the API, either
// from a blocking create or assembled from a stream's message_start event.
type MessageResponse struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Role         Role       `json:"role"`
	Content      Content    `json:"content"`
	Model        string     `json:"model"`
	StopReason   StopReason `json:"stop_reason,omitempty"`
	StopSequence *string    `json:"stop_sequence,omitempty"`
	Usage        Usage      `json:"usage"`
}

// TextBlocks returns the text of every text content block, in order.
func (m *MessageResponse) TextBlocks() []string {
	var texts []string
	for _, block := range m.Content {
		if text, ok := block.(TextBlock); ok {
			texts = append(texts, text.Text)
		}
	}
	return texts
}

// FirstText returns the text of the first text content block, or "".
func (m *MessageResponse) FirstText() string {
	for _, block := range m.Content {
		if text, ok := block.(TextBlock); ok {
			return text.Text
		}
	}
	return ""
}

// ToolUses returns every tool_use block in the response content.
func (m *MessageResponse) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, block := range m.Content {
		if use, ok := block.(ToolUseBlock); ok {
			uses = append(uses, use)
		}
	}
	return uses
}

// CountTokensRequest mirrors the /messages/count_tokens contract: the
// message-shaping fields of MessageRequest without any generation knobs.
type CountTokensRequest struct {
	Model    string
	Messages []MessageParam
	System   string
	Tools    []Tool
}

// Validate returns an error when required fields are missing.
func (r CountTokensRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return ConfigError{Reason: "model is required"}
	}
	if len(r.Messages) == 0 {
		return ConfigError{Reason: "at least one message is required"}
	}
	return nil
}

type countTokensPayload struct {
	Model    string         `json:"model"`
	Messages []MessageParam `json:"messages"`
	System   string         `json:"system,omitempty"`
	Tools    []Tool         `json:"tools,omitempty"`
}

// TokenCount is the result of a count_tokens call. No generation is performed.
type TokenCount struct {
	InputTokens int64 `json:"input_tokens"`
}

// RequestOption customizes a single outgoing API call (headers, request IDs, etc.).
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers  http.Header
	metadata map[string]string
}

// WithRequestID sets the request correlation header for this call.
func WithRequestID(requestID string) RequestOption {
	return func(opts *requestOptions) {
		clean := strings.TrimSpace(requestID)
		if clean == "" {
			return
		}
		opts.setHeader(requestIDHeaderName, clean)
	}
}

// WithHeader attaches an arbitrary header to the underlying HTTP request.
func WithHeader(key, value string) RequestOption {
	return func(opts *requestOptions) {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k == "" || v == "" {
			return
		}
		opts.setHeader(k, v)
	}
}

// WithHeaders attaches multiple headers to the underlying HTTP request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(opts *requestOptions) {
		for key, value := range headers {
			k := strings.TrimSpace(key)
			v := strings.TrimSpace(value)
			if k == "" || v == "" {
				continue
			}
			opts.setHeader(k, v)
		}
	}
}

// WithMetadataEntry adds a single metadata key/value to the request payload.
func WithMetadataEntry(key, value string) RequestOption {
	return func(opts *requestOptions) {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k == "" || v == "" {
			return
		}
		if opts.metadata == nil {
			opts.metadata = make(map[string]string)
		}
		opts.metadata[k] = v
	}
}

// WithMetadata merges the provided metadata map into the request payload.
func WithMetadata(metadata map[string]string) RequestOption {
	return func(opts *requestOptions) {
		for key, value := range metadata {
			k := strings.TrimSpace(key)
			v := strings.TrimSpace(value)
			if k == "" || v == "" {
				continue
			}
			if opts.metadata == nil {
				opts.metadata = make(map[string]string, len(metadata))
			}
			opts.metadata[k] = v
		}
	}
}

func (o *requestOptions) setHeader(key, value string) {
	if o.headers == nil {
		o.headers = make(http.Header)
	}
	o.headers.Set(key, value)
}

func buildRequestOptions(options []RequestOption) requestOptions {
	cfg := requestOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

func applyRequestOptions(req *http.Request, opts requestOptions) {
	for key, values := range opts.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
}

// mergeMetadata folds per-call metadata options into the payload metadata.
func mergeMetadata(base map[string]string, opts requestOptions) map[string]string {
	if len(opts.metadata) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(opts.metadata))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range opts.metadata {
		merged[k] = v
	}
	return merged
}
