package anthropic

import (
	"context"
	"sync"
)

// MockClient provides an in-memory Messages surface for unit tests without
// hitting the API. Responses and streams are consumed in FIFO order.
type MockClient struct {
	Messages *MockMessagesClient
}

// MockClientError is returned when a mock client is used without configuration.
type MockClientError struct {
	Reason string
}

func (e MockClientError) Error() string { return "mock client: " + e.Reason }

type mockCreateResult struct {
	resp MessageResponse
	err  error
}

type mockStreamResult struct {
	events []StreamEvent
	err    error
}

// MockMessagesClient implements the MessagesClient surface using
// preconfigured responses.
type MockMessagesClient struct {
	mu          sync.Mutex
	createQueue []mockCreateResult
	streamQueue []mockStreamResult
	countQueue  []TokenCount
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{Messages: &MockMessagesClient{}}
}

// WithMessageResponse enqueues a response for the next Create call.
func (c *MockClient) WithMessageResponse(resp MessageResponse) *MockClient {
	c.Messages.enqueueCreate(resp, nil)
	return c
}

// WithMessageError enqueues an error for the next Create call.
func (c *MockClient) WithMessageError(err error) *MockClient {
	c.Messages.enqueueCreate(MessageResponse{}, err)
	return c
}

// WithStreamEvents enqueues a stream of events for the next Stream call.
func (c *MockClient) WithStreamEvents(events []StreamEvent) *MockClient {
	c.Messages.enqueueStream(events, nil)
	return c
}

// WithStreamError enqueues a terminal error for the next Stream call. Events
// enqueued alongside it via WithStreamEventsThenError are delivered first.
func (c *MockClient) WithStreamError(err error) *MockClient {
	c.Messages.enqueueStream(nil, err)
	return c
}

// WithStreamEventsThenError enqueues events followed by a terminal error.
func (c *MockClient) WithStreamEventsThenError(events []StreamEvent, err error) *MockClient {
	c.Messages.enqueueStream(events, err)
	return c
}

// WithTokenCount enqueues a result for the next CountTokens call.
func (c *MockClient) WithTokenCount(count TokenCount) *MockClient {
	c.Messages.mu.Lock()
	defer c.Messages.mu.Unlock()
	c.Messages.countQueue = append(c.Messages.countQueue, count)
	return c
}

func (c *MockMessagesClient) enqueueCreate(resp MessageResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createQueue = append(c.createQueue, mockCreateResult{resp: resp, err: err})
}

func (c *MockMessagesClient) enqueueStream(events []StreamEvent, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := append([]StreamEvent(nil), events...)
	c.streamQueue = append(c.streamQueue, mockStreamResult{events: copied, err: err})
}

// Create pops the next queued response.
func (c *MockMessagesClient) Create(_ context.Context, req MessageRequest, _ ...RequestOption) (*MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.createQueue) == 0 {
		return nil, MockClientError{Reason: "no queued message response"}
	}
	next := c.createQueue[0]
	c.createQueue = c.createQueue[1:]
	if next.err != nil {
		return nil, next.err
	}
	resp := next.resp
	return &resp, nil
}

// CountTokens pops the next queued token count.
func (c *MockMessagesClient) CountTokens(_ context.Context, req CountTokensRequest, _ ...RequestOption) (TokenCount, error) {
	if err := req.Validate(); err != nil {
		return TokenCount{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.countQueue) == 0 {
		return TokenCount{}, MockClientError{Reason: "no queued token count"}
	}
	next := c.countQueue[0]
	c.countQueue = c.countQueue[1:]
	return next, nil
}

// Stream pops the next queued stream. The returned session behaves like a
// live one: events arrive in order over the channel, accumulation and
// idempotent Close work identically.
func (c *MockMessagesClient) Stream(ctx context.Context, req MessageRequest, _ ...RequestOption) (*MessageStream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.streamQueue) == 0 {
		return nil, MockClientError{Reason: "no queued stream"}
	}
	next := c.streamQueue[0]
	c.streamQueue = c.streamQueue[1:]
	return newEventStream(ctx, next.events, next.err), nil
}

// StreamWith mirrors MessagesClient.StreamWith for the mock surface.
func (c *MockMessagesClient) StreamWith(ctx context.Context, req MessageRequest, fn func(*MessageStream) error, options ...RequestOption) error {
	stream, err := c.Stream(ctx, req, options...)
	if err != nil {
		return err
	}
	defer stream.Close()
	return fn(stream)
}
