// Package stream turns a chunked generation into the SSE event sequence the
// legacy streaming client consumes: workflow_started, token_chunk per
// increment, citations, workflow_finished — or a single terminal error event.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gemgate/internal/core"
	"gemgate/internal/llm"
)

// Event is one server-sent event, before framing.
type Event struct {
	Name string
	Data any
}

// Coordinator drives one streamed answer. The producer side (the model) and
// the consumer side (the HTTP response) are decoupled by the chunk channel;
// the channel closing is the end sentinel.
type Coordinator struct {
	Provider string
	Extract  func(answer string) []core.Citation
}

// Run consumes chunks and emits the event sequence on the returned channel.
// A producer error terminates the stream with exactly one error event; no
// citations or finished event follows. The returned channel is closed when
// the stream ends either way.
func (c *Coordinator) Run(ctx context.Context, chunks <-chan llm.Chunk) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		started := time.Now()
		if !emit(ctx, out, Event{Name: "workflow_started", Data: map[string]any{
			"stage": "retrieved_content",
			"ts":    started.UTC().Format("2006-01-02T15:04:05.000000") + "Z",
		}}) {
			return
		}

		var full strings.Builder
		for chunk := range chunks {
			if chunk.Err != nil {
				emit(ctx, out, Event{Name: "error", Data: map[string]any{"error": chunk.Err.Error()}})
				return
			}
			full.WriteString(chunk.Text)
			if !emit(ctx, out, Event{Name: "token_chunk", Data: map[string]any{"chunk": chunk.Text}}) {
				return
			}
		}

		answer := full.String()
		citations := []core.Citation{}
		if c.Extract != nil {
			citations = c.Extract(answer)
		}
		if !emit(ctx, out, Event{Name: "citations", Data: map[string]any{"citations": citations}}) {
			return
		}

		emit(ctx, out, Event{Name: "workflow_finished", Data: map[string]any{
			"outputs":  map[string]any{"result": answer},
			"provider": c.Provider,
			"meta": map[string]any{
				"tokens_used": llm.ApproximateTokens(answer),
				"latency_ms":  time.Since(started).Milliseconds(),
				"cached":      false,
			},
		}})
	}()

	return out
}

func emit(ctx context.Context, out chan<- Event, event Event) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// WriteEvent frames one event as SSE and writes it. The caller flushes.
func WriteEvent(w io.Writer, event Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
	return err
}
