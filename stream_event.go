package anthropic

import "encoding/json"

// StreamEventType is the discriminator carried in the "type" field of every
// streamed payload.
type StreamEventType string

const (
	StreamEventMessageStart      StreamEventType = "message_start"
	StreamEventContentBlockStart StreamEventType = "content_block_start"
	StreamEventContentBlockDelta StreamEventType = "content_block_delta"
	StreamEventContentBlockStop  StreamEventType = "content_block_stop"
	StreamEventMessageDelta      StreamEventType = "message_delta"
	StreamEventMessageStop       StreamEventType = "message_stop"
	StreamEventPing              StreamEventType = "ping"
)

// StreamEvent is one classified event from a message stream. Fields beyond
// Type and Raw are populated per event type:
//
//	message_start        Message
//	content_block_start  Index, ContentBlock
//	content_block_delta  Index, Delta
//	content_block_stop   Index
//	message_delta        Delta, Usage
//	message_stop, ping   (none)
//
// Events with a discriminator this SDK version does not recognize keep their
// wire Type and Raw payload; Known reports false for them. They are delivered,
// never dropped.
type StreamEvent struct {
	Type StreamEventType
	// Raw is the complete data payload exactly as received.
	Raw json.RawMessage

	Index        int
	Message      *MessageResponse
	ContentBlock json.RawMessage
	Delta        Delta
	Usage        Delta
}

// Known reports whether the event type is part of the protocol set this SDK
// classifies.
func (e StreamEvent) Known() bool {
	switch e.Type {
	case StreamEventMessageStart, StreamEventContentBlockStart,
		StreamEventContentBlockDelta, StreamEventContentBlockStop,
		StreamEventMessageDelta, StreamEventMessageStop, StreamEventPing:
		return true
	}
	return false
}

// TextDelta returns the text fragment carried by a content_block_delta event,
// if any.
func (e StreamEvent) TextDelta() (string, bool) {
	if e.Type != StreamEventContentBlockDelta {
		return "", false
	}
	return e.Delta.Text()
}

// Delta holds the open-ended delta and usage payloads attached to streaming
// events. The protocol adds keys across versions, so these stay maps with
// typed accessors for the known ones.
type Delta map[string]any

// DeltaType returns the delta's own "type" field (e.g. "text_delta",
// "input_json_delta"), if present.
func (d Delta) DeltaType() string {
	s, _ := d["type"].(string)
	return s
}

// Text returns the "text" field of a text delta.
func (d Delta) Text() (string, bool) {
	s, ok := d["text"].(string)
	return s, ok
}

// PartialJSON returns the "partial_json" fragment of a tool-input delta.
func (d Delta) PartialJSON() (string, bool) {
	s, ok := d["partial_json"].(string)
	return s, ok
}

// StopReason returns the "stop_reason" field of a message delta.
func (d Delta) StopReason() (StopReason, bool) {
	s, ok := d["stop_reason"].(string)
	if !ok || s == "" {
		return "", false
	}
	return ParseStopReason(s), true
}

// StopSequence returns the "stop_sequence" field of a message delta.
func (d Delta) StopSequence() (string, bool) {
	s, ok := d["stop_sequence"].(string)
	return s, ok
}

// Int returns a numeric field such as "output_tokens". JSON numbers decode as
// float64; values that are not numbers report false.
func (d Delta) Int(key string) (int64, bool) {
	f, ok := d[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
