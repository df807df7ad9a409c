package anthropic

import (
	"context"
	"errors"
	"testing"
)

func mockRequest() MessageRequest {
	return MessageRequest{
		Model:     "claude-test",
		Messages:  []MessageParam{NewUserMessage("hi")},
		MaxTokens: 16,
	}
}

func TestMockClientCreateFIFO(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockClient().
		WithMessageResponse(MessageResponse{ID: "msg_1"}).
		WithMessageError(boom).
		WithMessageResponse(MessageResponse{ID: "msg_2"})

	resp, err := mock.Messages.Create(context.Background(), mockRequest())
	if err != nil || resp.ID != "msg_1" {
		t.Fatalf("first: resp=%+v err=%v", resp, err)
	}
	if _, err := mock.Messages.Create(context.Background(), mockRequest()); !errors.Is(err, boom) {
		t.Fatalf("second: %v", err)
	}
	resp, err = mock.Messages.Create(context.Background(), mockRequest())
	if err != nil || resp.ID != "msg_2" {
		t.Fatalf("third: resp=%+v err=%v", resp, err)
	}

	// An exhausted queue is a configuration defect.
	var mockErr MockClientError
	if _, err := mock.Messages.Create(context.Background(), mockRequest()); !errors.As(err, &mockErr) {
		t.Fatalf("expected MockClientError, got %v", err)
	}
}

func TestMockClientValidatesRequests(t *testing.T) {
	mock := NewMockClient().WithMessageResponse(MessageResponse{ID: "msg_1"})
	var cfgErr ConfigError
	if _, err := mock.Messages.Create(context.Background(), MessageRequest{}); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestMockClientStream(t *testing.T) {
	mock := NewMockClient().WithStreamEvents([]StreamEvent{
		{Type: StreamEventMessageStart, Message: &MessageResponse{ID: "msg_m"}},
		{Type: StreamEventContentBlockDelta, Delta: Delta{"type": "text_delta", "text": "mocked "}},
		{Type: StreamEventContentBlockDelta, Delta: Delta{"type": "text_delta", "text": "stream"}},
		{Type: StreamEventMessageStop},
	})

	stream, err := mock.Messages.Stream(context.Background(), mockRequest())
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	text, err := stream.FinalText(context.Background())
	if err != nil {
		t.Fatalf("final text: %v", err)
	}
	if text != "mocked stream" {
		t.Fatalf("unexpected text %q", text)
	}
	if msg := stream.FinalMessage(); msg == nil || msg.ID != "msg_m" {
		t.Fatalf("final message: %+v", msg)
	}
}

func TestMockClientStreamTerminalError(t *testing.T) {
	cause := errors.New("mid-stream failure")
	mock := NewMockClient().WithStreamEventsThenError([]StreamEvent{
		{Type: StreamEventContentBlockDelta, Delta: Delta{"text": "partial"}},
	}, cause)

	stream, err := mock.Messages.Stream(context.Background(), mockRequest())
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	event, ok, err := stream.Next()
	if !ok || err != nil {
		t.Fatalf("next: ok=%v err=%v", ok, err)
	}
	if text, ok := event.TextDelta(); !ok || text != "partial" {
		t.Fatalf("unexpected delta %q ok=%v", text, ok)
	}
	if _, ok, err := stream.Next(); ok || !errors.Is(err, cause) {
		t.Fatalf("terminal: ok=%v err=%v", ok, err)
	}
}

func TestMockClientStreamWith(t *testing.T) {
	mock := NewMockClient().WithStreamEvents([]StreamEvent{
		{Type: StreamEventMessageStop},
	})

	var scoped *MessageStream
	err := mock.Messages.StreamWith(context.Background(), mockRequest(), func(stream *MessageStream) error {
		scoped = stream
		_, _, err := stream.Next()
		return err
	})
	if err != nil {
		t.Fatalf("stream with: %v", err)
	}
	if _, ok := <-scoped.Events(); ok {
		t.Fatal("stream left open")
	}
}

func TestMockClientCountTokens(t *testing.T) {
	mock := NewMockClient().WithTokenCount(TokenCount{InputTokens: 7})
	count, err := mock.Messages.CountTokens(context.Background(), CountTokensRequest{
		Model:    "claude-test",
		Messages: []MessageParam{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count.InputTokens != 7 {
		t.Fatalf("unexpected count %d", count.InputTokens)
	}
}
