// Package testutil provides helpers for SDK tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
)

// Frame renders one SSE frame. The event name is omitted when empty.
func Frame(event, data string) string {
	var b strings.Builder
	if event != "" {
		b.WriteString("event: ")
		b.WriteString(event)
		b.WriteString("\n")
	}
	b.WriteString("data: ")
	b.WriteString(data)
	b.WriteString("\n\n")
	return b.String()
}

// SSEStep describes a chunk to emit with an optional delay. Chunks are
// written verbatim, so a step may contain partial frames.
type SSEStep struct {
	Delay time.Duration
	Chunk string
}

// SSEServerConfig configures the SSE test server.
type SSEServerConfig struct {
	Status     int
	Headers    map[string]string
	FinalDelay time.Duration
}

// NewSSEServer returns an httptest server that streams the given chunks with
// delays, flushing after each one so chunk boundaries survive transport.
func NewSSEServer(steps []SSEStep, cfg SSEServerConfig) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := cfg.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for k, v := range cfg.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		flusher, _ := w.(http.Flusher)
		for _, step := range steps {
			if step.Delay > 0 {
				time.Sleep(step.Delay)
			}
			_, _ = io.WriteString(w, step.Chunk)
			if flusher != nil {
				flusher.Flush()
			}
		}
		if cfg.FinalDelay > 0 {
			time.Sleep(cfg.FinalDelay)
		}
	}))
}

// ChunkReader yields the input in fixed-size chunks, exercising decoders
// against arbitrary chunk boundaries (including mid-line and mid-rune).
type ChunkReader struct {
	data []byte
	size int
	off  int
}

// NewChunkReader returns a reader that produces size-byte chunks of data.
func NewChunkReader(data string, size int) *ChunkReader {
	if size < 1 {
		size = 1
	}
	return &ChunkReader{data: []byte(data), size: size}
}

func (r *ChunkReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	end := r.off + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.off:end])
	r.off += n
	return n, nil
}
