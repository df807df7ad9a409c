package anthropic

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// doneSentinel is the data payload that terminates a stream. It is consumed
// by the producer and never delivered as an event.
const doneSentinel = "[DONE]"

// sseFrame is one wire frame: the optional event name plus the assembled
// data payload.
type sseFrame struct {
	name string
	data []byte
}

// sseDecoder reassembles an arbitrarily chunked byte stream into SSE frames.
// It reads whole byte lines through bufio, so chunk boundaries (including
// boundaries inside a multi-byte rune) never split or merge a line.
type sseDecoder struct {
	reader *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{reader: bufio.NewReader(r)}
}

// next returns the next frame, or io.EOF at the natural end of the stream.
// Comment lines and unrecognized line shapes are skipped. A trailing
// remainder with no newline at EOF is discarded; complete data lines of an
// unterminated final frame are still delivered.
func (d *sseDecoder) next() (sseFrame, error) {
	var name string
	var data strings.Builder
	for {
		line, err := d.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if name != "" || data.Len() > 0 {
					return sseFrame{name: name, data: []byte(data.String())}, nil
				}
				return sseFrame{}, io.EOF
			}
			return sseFrame{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if name == "" && data.Len() == 0 {
				continue
			}
			return sseFrame{name: name, data: []byte(data.String())}, nil
		}
		switch {
		case strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
	}
}

// classifyStreamEvent maps a data payload to a typed StreamEvent by its
// "type" discriminator. Unrecognized discriminators yield an event carrying
// the raw payload. A malformed payload, or a recognized type missing its
// required fields, returns an error; the caller logs it and skips the line.
func classifyStreamEvent(data []byte) (StreamEvent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return StreamEvent{}, fmt.Errorf("decode event payload: %w", err)
	}
	event := StreamEvent{
		Type: StreamEventType(head.Type),
		Raw:  append(json.RawMessage(nil), data...),
	}
	switch event.Type {
	case StreamEventMessageStart:
		var body struct {
			Message *MessageResponse `json:"message"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return StreamEvent{}, fmt.Errorf("decode message_start: %w", err)
		}
		if body.Message == nil {
			return StreamEvent{}, errors.New("message_start missing message")
		}
		event.Message = body.Message
	case StreamEventContentBlockStart:
		var body struct {
			Index        int             `json:"index"`
			ContentBlock json.RawMessage `json:"content_block"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return StreamEvent{}, fmt.Errorf("decode content_block_start: %w", err)
		}
		event.Index = body.Index
		event.ContentBlock = body.ContentBlock
	case StreamEventContentBlockDelta:
		var body struct {
			Index int   `json:"index"`
			Delta Delta `json:"delta"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return StreamEvent{}, fmt.Errorf("decode content_block_delta: %w", err)
		}
		if body.Delta == nil {
			return StreamEvent{}, errors.New("content_block_delta missing delta")
		}
		event.Index = body.Index
		event.Delta = body.Delta
	case StreamEventContentBlockStop:
		var body struct {
			Index int `json:"index"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return StreamEvent{}, fmt.Errorf("decode content_block_stop: %w", err)
		}
		event.Index = body.Index
	case StreamEventMessageDelta:
		var body struct {
			Delta Delta `json:"delta"`
			Usage Delta `json:"usage"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return StreamEvent{}, fmt.Errorf("decode message_delta: %w", err)
		}
		event.Delta = body.Delta
		event.Usage = body.Usage
	case StreamEventMessageStop, StreamEventPing:
		// No payload beyond the discriminator.
	default:
		// Unknown type: delivered with the raw payload only.
	}
	return event, nil
}
