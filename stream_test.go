package anthropic

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

type countingBody struct {
	io.Reader
	mu     sync.Mutex
	closes int
}

func (b *countingBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return nil
}

func (b *countingBody) closeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

// errBody serves its data and then fails with the given error instead of EOF.
type errBody struct {
	data []byte
	err  error
	off  int
}

func (b *errBody) Read(p []byte) (int, error) {
	if b.off >= len(b.data) {
		return 0, b.err
	}
	n := copy(p, b.data[b.off:])
	b.off += n
	return n, nil
}

func (b *errBody) Close() error { return nil }

const streamFixture = "event: message_start\n" +
	"data: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\",\"type\":\"message\",\"role\":\"assistant\",\"content\":[],\"model\":\"demo\",\"usage\":{\"input_tokens\":5,\"output_tokens\":0}}}\n\n" +
	"event: content_block_start\n" +
	"data: {\"type\":\"content_block_start\",\"index\":0,\"content_block\":{\"type\":\"text\",\"text\":\"\"}}\n\n" +
	"event: content_block_delta\n" +
	"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Hel\"}}\n\n" +
	"event: content_block_delta\n" +
	"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"text\":\"lo, \"}}\n\n" +
	"event: content_block_delta\n" +
	"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"text\":\"world\"}}\n\n" +
	"event: content_block_stop\n" +
	"data: {\"type\":\"content_block_stop\",\"index\":0}\n\n" +
	"event: message_delta\n" +
	"data: {\"type\":\"message_delta\",\"delta\":{\"stop_reason\":\"end_turn\"},\"usage\":{\"output_tokens\":3}}\n\n" +
	"event: message_stop\n" +
	"data: {\"type\":\"message_stop\"}\n\n" +
	"data: [DONE]\n\n"

func fixtureStream(body io.ReadCloser) *MessageStream {
	return newMessageStream(context.Background(), body, TelemetryHooks{}, "req-1")
}

func drainTypes(t *testing.T, stream *MessageStream) []StreamEventType {
	t.Helper()
	var types []StreamEventType
	for {
		event, ok, err := stream.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			return types
		}
		types = append(types, event.Type)
	}
}

func TestStreamOrderAndTermination(t *testing.T) {
	body := &countingBody{Reader: strings.NewReader(streamFixture)}
	stream := fixtureStream(body)

	got := drainTypes(t, stream)
	want := []StreamEventType{
		StreamEventMessageStart,
		StreamEventContentBlockStart,
		StreamEventContentBlockDelta,
		StreamEventContentBlockDelta,
		StreamEventContentBlockDelta,
		StreamEventContentBlockStop,
		StreamEventMessageDelta,
		StreamEventMessageStop,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %q want %q", i, got[i], want[i])
		}
	}

	// The channel is closed after message_stop: no event is produced for
	// [DONE] and further receives observe end-of-sequence immediately.
	if _, ok, err := stream.Next(); ok || err != nil {
		t.Fatalf("expected closed stream, got ok=%v err=%v", ok, err)
	}
	if body.closeCount() != 1 {
		t.Fatalf("expected body closed once, got %d", body.closeCount())
	}
}

func TestStreamOrderRepeatable(t *testing.T) {
	first := drainTypes(t, fixtureStream(io.NopCloser(strings.NewReader(streamFixture))))
	for run := 0; run < 3; run++ {
		got := drainTypes(t, fixtureStream(io.NopCloser(strings.NewReader(streamFixture))))
		if len(got) != len(first) {
			t.Fatalf("run %d: expected %d events, got %d", run, len(first), len(got))
		}
		for i := range first {
			if got[i] != first[i] {
				t.Fatalf("run %d event %d: got %q want %q", run, i, got[i], first[i])
			}
		}
	}
}

func TestStreamMalformedLineSkipped(t *testing.T) {
	input := "data: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\",\"type\":\"message\",\"role\":\"assistant\",\"content\":[],\"model\":\"demo\",\"usage\":{\"input_tokens\":1,\"output_tokens\":0}}}\n\n" +
		"data: {not valid json\n\n" +
		"data: {\"type\":\"message_stop\"}\n\n" +
		"data: [DONE]\n\n"

	var mu sync.Mutex
	var warnings []LogEntry
	telemetry := TelemetryHooks{
		OnLogEntry: func(_ context.Context, entry LogEntry) {
			mu.Lock()
			defer mu.Unlock()
			if entry.Message == "stream_parse_warning" {
				warnings = append(warnings, entry)
			}
		},
	}
	stream := newMessageStream(context.Background(), io.NopCloser(strings.NewReader(input)), telemetry, "")

	got := drainTypes(t, stream)
	if len(got) != 2 || got[0] != StreamEventMessageStart || got[1] != StreamEventMessageStop {
		t.Fatalf("unexpected events: %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(warnings) != 1 {
		t.Fatalf("expected one parse warning, got %d", len(warnings))
	}
	if warnings[0].Level != LogLevelWarn {
		t.Fatalf("unexpected warning level %q", warnings[0].Level)
	}
}

func TestStreamUnknownEventDelivered(t *testing.T) {
	input := "data: {\"type\":\"something_new\",\"payload\":[1,2,3]}\n\ndata: [DONE]\n\n"
	stream := fixtureStream(io.NopCloser(strings.NewReader(input)))

	event, ok, err := stream.Next()
	if err != nil || !ok {
		t.Fatalf("next: ok=%v err=%v", ok, err)
	}
	if event.Known() {
		t.Fatalf("event %q should not be known", event.Type)
	}
	if event.Type != "something_new" {
		t.Fatalf("unexpected type %q", event.Type)
	}
	if string(event.Raw) != `{"type":"something_new","payload":[1,2,3]}` {
		t.Fatalf("raw payload not preserved: %s", event.Raw)
	}
	if _, ok, _ := stream.Next(); ok {
		t.Fatal("expected end of stream")
	}
}

func TestFinalTextAccumulation(t *testing.T) {
	stream := fixtureStream(io.NopCloser(strings.NewReader(streamFixture)))
	defer stream.Close()

	text, err := stream.FinalText(context.Background())
	if err != nil {
		t.Fatalf("final text: %v", err)
	}
	if text != "Hello, world" {
		t.Fatalf("unexpected final text %q", text)
	}
	msg := stream.FinalMessage()
	if msg == nil || msg.ID != "msg_1" {
		t.Fatalf("final message not captured: %+v", msg)
	}
}

func TestTextIterationLazyAndSinglePass(t *testing.T) {
	stream := fixtureStream(io.NopCloser(strings.NewReader(streamFixture)))
	defer stream.Close()

	var fragments []string
	for fragment := range stream.Text() {
		fragments = append(fragments, fragment)
		if len(fragments) == 2 {
			break
		}
	}
	if len(fragments) != 2 || fragments[0] != "Hel" || fragments[1] != "lo, " {
		t.Fatalf("unexpected fragments %v", fragments)
	}

	// Draining after a partial lazy pass still yields the full concatenation.
	text, err := stream.FinalText(context.Background())
	if err != nil {
		t.Fatalf("final text: %v", err)
	}
	if text != "Hello, world" {
		t.Fatalf("unexpected final text %q", text)
	}

	// The lazy sequence is destructive: a second pass sees nothing.
	for fragment := range stream.Text() {
		t.Fatalf("unexpected fragment after drain: %q", fragment)
	}
}

func TestStreamCloseIdempotent(t *testing.T) {
	body := &countingBody{Reader: strings.NewReader(streamFixture)}
	stream := fixtureStream(body)

	// Consume a single event, then abandon the stream.
	if _, ok, err := stream.Next(); !ok || err != nil {
		t.Fatalf("next: ok=%v err=%v", ok, err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if body.closeCount() != 1 {
		t.Fatalf("expected body closed exactly once, got %d", body.closeCount())
	}

	// The channel reaches closed state so any other waiter unblocks.
	select {
	case _, ok := <-stream.Events():
		if ok {
			// A buffered event may still be delivered; the next receive
			// must observe closure.
			if _, ok := <-stream.Events(); ok {
				t.Fatal("channel still open after close")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not reach closed state")
	}
	if stream.Err() != nil {
		t.Fatalf("close must not surface an error: %v", stream.Err())
	}
}

func TestStreamTransportErrorSurfaced(t *testing.T) {
	cause := errors.New("connection reset")
	body := &errBody{
		data: []byte("data: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\",\"type\":\"message\",\"role\":\"assistant\",\"content\":[],\"model\":\"demo\",\"usage\":{\"input_tokens\":1,\"output_tokens\":0}}}\n\n"),
		err:  cause,
	}
	stream := fixtureStream(body)

	// The event delivered before the failure remains valid.
	event, ok, err := stream.Next()
	if !ok || err != nil {
		t.Fatalf("next: ok=%v err=%v", ok, err)
	}
	if event.Type != StreamEventMessageStart {
		t.Fatalf("unexpected event %q", event.Type)
	}

	_, ok, err = stream.Next()
	if ok {
		t.Fatal("expected terminal state")
	}
	var transportErr TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not wrapped: %v", err)
	}
}

func TestStreamContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// No [DONE] and no EOF: the reader would block forever without cancellation.
	pipeReader, pipeWriter := io.Pipe()
	stream := newMessageStream(ctx, pipeReader, TelemetryHooks{}, "")

	go func() {
		pipeWriter.Write([]byte("data: {\"type\":\"ping\"}\n\n"))
	}()

	if _, ok, err := stream.Next(); !ok || err != nil {
		t.Fatalf("next: ok=%v err=%v", ok, err)
	}
	cancel()
	pipeWriter.CloseWithError(context.Canceled)

	if _, ok, _ := stream.Next(); ok {
		t.Fatal("expected closed stream after cancellation")
	}
	if !errors.Is(stream.Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", stream.Err())
	}
}
