package anthropic

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
)

// MessageStream is one live streaming session. A dedicated producer goroutine
// owns the transport connection, classifies SSE frames, and hands events to
// the consumer over an unbuffered channel, so the producer never runs ahead
// of consumption. A stream is single-consumer and never reused across
// requests.
//
// The underlying connection is released exactly once: on Close, on producer
// completion, or on context cancellation, whichever comes first.
type MessageStream struct {
	ctx       context.Context
	cancel    context.CancelFunc
	body      io.ReadCloser
	telemetry TelemetryHooks

	// RequestID echoes the correlation header returned by the API.
	RequestID string

	events chan StreamEvent
	done   chan struct{}

	closeOnce sync.Once
	bodyOnce  sync.Once
	bodyErr   error
	userClose bool

	mu           sync.Mutex
	err          error
	text         strings.Builder
	finalMessage *MessageResponse
}

func newMessageStream(ctx context.Context, body io.ReadCloser, telemetry TelemetryHooks, requestID string) *MessageStream {
	streamCtx, cancel := context.WithCancel(ctx)
	s := &MessageStream{
		ctx:       streamCtx,
		cancel:    cancel,
		body:      body,
		telemetry: telemetry,
		RequestID: requestID,
		events:    make(chan StreamEvent),
		done:      make(chan struct{}),
	}
	go s.produce(newSSEDecoder(body))
	return s
}

// newEventStream returns a stream fed from a fixed event slice instead of a
// transport connection. Used by the mock client; the session contracts
// (ordering, accumulation, idempotent close) are identical.
func newEventStream(ctx context.Context, events []StreamEvent, terminal error) *MessageStream {
	streamCtx, cancel := context.WithCancel(ctx)
	s := &MessageStream{
		ctx:    streamCtx,
		cancel: cancel,
		events: make(chan StreamEvent),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer close(s.events)
		for _, ev := range events {
			select {
			case s.events <- ev:
			case <-s.ctx.Done():
				return
			}
		}
		if terminal != nil {
			s.setErr(terminal)
		}
	}()
	return s
}

// produce runs as the stream's single producer. It terminates on the [DONE]
// sentinel, natural EOF, cancellation, or Close, and always closes the event
// channel so consumers observe end-of-sequence.
func (s *MessageStream) produce(decoder *sseDecoder) {
	defer close(s.done)
	defer close(s.events)
	defer s.closeBody()
	for {
		frame, err := decoder.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case <-s.ctx.Done():
				s.recordCancellation()
			default:
				s.setErr(TransportError{Op: "read stream", Err: err})
			}
			return
		}
		if len(frame.data) == 0 {
			// Name-only frames carry nothing the classifier needs.
			continue
		}
		if string(frame.data) == doneSentinel {
			return
		}
		event, err := classifyStreamEvent(frame.data)
		if err != nil {
			// Non-fatal: the line is skipped and the stream continues.
			s.telemetry.log(s.ctx, LogLevelWarn, "stream_parse_warning", map[string]any{
				"error": err.Error(),
			})
			s.telemetry.metric(s.ctx, "sdk_stream_parse_warnings_total", 1, nil)
			continue
		}
		if s.telemetry.OnStreamEvent != nil {
			s.telemetry.OnStreamEvent(s.ctx, event)
		}
		s.telemetry.metric(s.ctx, "sdk_stream_events_total", 1, map[string]string{
			"event": string(event.Type),
		})
		select {
		case s.events <- event:
		case <-s.ctx.Done():
			s.recordCancellation()
			return
		}
	}
}

// recordCancellation surfaces an outer context cancellation as the terminal
// error. Cancellation caused by Close is a clean shutdown, not an error.
func (s *MessageStream) recordCancellation() {
	s.mu.Lock()
	closed := s.userClose
	s.mu.Unlock()
	if !closed {
		s.setErr(s.ctx.Err())
	}
}

func (s *MessageStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *MessageStream) closeBody() error {
	s.bodyOnce.Do(func() {
		if s.body != nil {
			s.bodyErr = s.body.Close()
		}
	})
	return s.bodyErr
}

// Next advances the stream. It returns false when no further events will
// arrive; Err (also returned here) then reports the terminal error, if any.
// Events already delivered remain valid regardless of how the stream ends.
func (s *MessageStream) Next() (StreamEvent, bool, error) {
	event, ok := <-s.events
	if !ok {
		return StreamEvent{}, false, s.Err()
	}
	s.observe(event)
	return event, true, nil
}

// Events exposes the raw event channel. Unlike Next, receiving from it
// directly bypasses the text accumulator and final-message capture.
func (s *MessageStream) Events() <-chan StreamEvent {
	return s.events
}

// Err returns the terminal stream error, if any. It is meaningful once Next
// has returned false.
func (s *MessageStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// observe feeds the session accumulator from a delivered event.
func (s *MessageStream) observe(event StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch event.Type {
	case StreamEventMessageStart:
		if s.finalMessage == nil {
			s.finalMessage = event.Message
		}
	case StreamEventContentBlockDelta:
		if text, ok := event.Delta.Text(); ok {
			s.text.WriteString(text)
		}
	}
}

// Text returns a lazy sequence of the text fragments carried by
// content_block_delta events. Other event variants are consumed and
// discarded. The sequence is finite and single-pass: the underlying channel
// is drained destructively, so it can be ranged at most once per session.
func (s *MessageStream) Text() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			event, ok, _ := s.Next()
			if !ok {
				return
			}
			if text, ok := event.TextDelta(); ok {
				if !yield(text) {
					return
				}
			}
		}
	}
}

// FinalText drains the remainder of the stream and returns all accumulated
// text, including fragments consumed by an earlier Text iteration. On a
// terminal stream error the text delivered so far is returned alongside it.
func (s *MessageStream) FinalText(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return s.AccumulatedText(), ctx.Err()
		default:
		}
		_, ok, err := s.Next()
		if !ok {
			return s.AccumulatedText(), err
		}
	}
}

// AccumulatedText returns the text fragments observed so far, concatenated.
func (s *MessageStream) AccumulatedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// FinalMessage returns the message metadata captured from the stream's
// message_start event, or nil if none has been observed yet.
func (s *MessageStream) FinalMessage() *MessageResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalMessage
}

// Close terminates the session: the producer stops reading the transport,
// the connection is released, and the event channel reaches its closed
// state. Close is idempotent and safe to call at any point of consumption.
func (s *MessageStream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.userClose = true
		s.mu.Unlock()
		s.cancel()
		s.closeBody()
		<-s.done
	})
	return s.bodyErr
}
