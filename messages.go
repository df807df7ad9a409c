package anthropic

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/praxislabs/anthropic-go/headers"
	"github.com/praxislabs/anthropic-go/routes"
)

// MessagesClient provides access to the Messages API surface.
type MessagesClient struct {
	client *Client
}

func (c *MessagesClient) ensureInitialized() error {
	if c == nil || c.client == nil {
		return ConfigError{Reason: "messages client not initialized"}
	}
	return nil
}

// Create performs a blocking generation and returns the complete message.
func (c *MessagesClient) Create(ctx context.Context, req MessageRequest, options ...RequestOption) (*MessageResponse, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	opts := buildRequestOptions(options)
	payload := newMessageRequestPayload(req)
	payload.Metadata = mergeMetadata(payload.Metadata, opts)
	httpReq, err := c.client.newJSONRequest(ctx, http.MethodPost, routes.Messages, payload)
	if err != nil {
		return nil, err
	}
	applyRequestOptions(httpReq, opts)
	resp, err := c.client.send(httpReq)
	if err != nil {
		c.client.telemetry.log(ctx, LogLevelError, "create_message_failed", map[string]any{"error": err.Error()})
		return nil, err
	}
	defer resp.Body.Close()
	var message MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&message); err != nil {
		return nil, err
	}
	return &message, nil
}

// CountTokens counts the input tokens the request would consume, performing
// no generation.
func (c *MessagesClient) CountTokens(ctx context.Context, req CountTokensRequest, options ...RequestOption) (TokenCount, error) {
	if err := c.ensureInitialized(); err != nil {
		return TokenCount{}, err
	}
	if err := req.Validate(); err != nil {
		return TokenCount{}, err
	}
	payload := countTokensPayload{
		Model:    req.Model,
		Messages: req.Messages,
		System:   req.System,
		Tools:    req.Tools,
	}
	httpReq, err := c.client.newJSONRequest(ctx, http.MethodPost, routes.MessagesCountTokens, payload)
	if err != nil {
		return TokenCount{}, err
	}
	applyRequestOptions(httpReq, buildRequestOptions(options))
	resp, err := c.client.send(httpReq)
	if err != nil {
		return TokenCount{}, err
	}
	defer resp.Body.Close()
	var count TokenCount
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return TokenCount{}, err
	}
	return count, nil
}

// Stream opens a streaming generation. The returned session delivers events
// in wire order; the caller owns it and must Close it (or consume it through
// StreamWith, which closes on every exit path).
//
// An HTTP error before the stream begins is returned here synchronously; no
// session is created.
func (c *MessagesClient) Stream(ctx context.Context, req MessageRequest, options ...RequestOption) (*MessageStream, error) {
	if err := c.ensureInitialized(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	opts := buildRequestOptions(options)
	payload := newMessageRequestPayload(req)
	payload.Metadata = mergeMetadata(payload.Metadata, opts)
	payload.Stream = true
	httpReq, err := c.client.newJSONRequest(ctx, http.MethodPost, routes.Messages, payload)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	applyRequestOptions(httpReq, opts)
	resp, err := c.client.send(httpReq)
	if err != nil {
		return nil, err
	}
	return newMessageStream(ctx, resp.Body, c.client.telemetry, resp.Header.Get(headers.RequestID)), nil
}

// StreamWith opens a streaming generation and runs fn with the session. The
// session is closed when fn returns, returns early, or panics, so the
// underlying connection cannot leak on any control-flow path out of fn.
func (c *MessagesClient) StreamWith(ctx context.Context, req MessageRequest, fn func(*MessageStream) error, options ...RequestOption) error {
	stream, err := c.Stream(ctx, req, options...)
	if err != nil {
		return err
	}
	defer stream.Close()
	return fn(stream)
}
