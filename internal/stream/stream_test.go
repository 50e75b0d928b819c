package stream

import (
	"context"
	"strings"
	"testing"

	"gemgate/internal/citations"
	"gemgate/internal/core"
	"gemgate/internal/llm"
)

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var all []Event
	for event := range events {
		all = append(all, event)
	}
	return all
}

func TestRun_CleanStream(t *testing.T) {
	chunks := make(chan llm.Chunk, 3)
	chunks <- llm.Chunk{Text: "Glazing protects "}
	chunks <- llm.Chunk{Text: "shrimp. See https://example.com/glazing"}
	close(chunks)

	coordinator := &Coordinator{
		Provider: "gemini-2.5-flash",
		Extract:  citations.Extract,
	}
	events := collect(t, coordinator.Run(context.Background(), chunks))

	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	expected := []string{"workflow_started", "token_chunk", "token_chunk", "citations", "workflow_finished"}
	if len(names) != len(expected) {
		t.Fatalf("Event sequence %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Event sequence %v, want %v", names, expected)
		}
	}

	started := events[0].Data.(map[string]any)
	if started["stage"] != "retrieved_content" {
		t.Errorf("Started stage = %v, want retrieved_content", started["stage"])
	}
	ts, ok := started["ts"].(string)
	if !ok || !strings.HasSuffix(ts, "Z") {
		t.Errorf("Started ts must be an ISO timestamp ending in Z, got %v", started["ts"])
	}

	first := events[1].Data.(map[string]any)
	if first["chunk"] != "Glazing protects " {
		t.Errorf("Chunk data = %v, want the raw text under the chunk key", first["chunk"])
	}

	cites := events[3].Data.(map[string]any)["citations"].([]core.Citation)
	if len(cites) != 1 || cites[0].URL != "https://example.com/glazing" {
		t.Errorf("Citations wrong: %+v", cites)
	}

	finished := events[4].Data.(map[string]any)
	outputs := finished["outputs"].(map[string]any)
	if outputs["result"] != "Glazing protects shrimp. See https://example.com/glazing" {
		t.Errorf("Assembled answer wrong: %v", outputs["result"])
	}
	if len(outputs) != 1 {
		t.Errorf("Finished outputs must carry only result, got %v", outputs)
	}
	meta := finished["meta"].(map[string]any)
	if meta["cached"] != false {
		t.Error("Streamed responses are never cached")
	}
	if meta["tokens_used"].(int) != 5 {
		t.Errorf("Approximate tokens = %v, want 5", meta["tokens_used"])
	}
}

func TestRun_MidStreamError(t *testing.T) {
	chunks := make(chan llm.Chunk, 3)
	chunks <- llm.Chunk{Text: "First "}
	chunks <- llm.Chunk{Text: "second "}
	chunks <- llm.Chunk{Err: context.DeadlineExceeded}
	close(chunks)

	coordinator := &Coordinator{Provider: "gemini-2.5-flash"}
	events := collect(t, coordinator.Run(context.Background(), chunks))

	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.Name
	}
	expected := []string{"workflow_started", "token_chunk", "token_chunk", "error"}
	if len(names) != len(expected) {
		t.Fatalf("Event sequence %v, want %v", names, expected)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Event sequence %v, want %v", names, expected)
		}
	}

	errorCount := 0
	for _, e := range events {
		if e.Name == "error" {
			errorCount++
		}
	}
	if errorCount != 1 {
		t.Errorf("Exactly one error event required, got %d", errorCount)
	}
	errData := events[3].Data.(map[string]any)
	if errData["error"] != context.DeadlineExceeded.Error() {
		t.Errorf("Error data = %v, want the message under the error key", errData)
	}
}

func TestRun_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	chunks := make(chan llm.Chunk)
	coordinator := &Coordinator{Provider: "gemini-2.5-flash"}
	events := coordinator.Run(ctx, chunks)

	// Consume the started event, then disconnect.
	<-events
	cancel()
	chunks <- llm.Chunk{Text: "never delivered"}
	close(chunks)

	// The coordinator must close its output without further events.
	for range events {
	}
}

func TestWriteEvent(t *testing.T) {
	var buf strings.Builder
	err := WriteEvent(&buf, Event{Name: "token_chunk", Data: map[string]any{"chunk": "hi"}})
	if err != nil {
		t.Fatalf("WriteEvent failed: %v", err)
	}

	expected := "event: token_chunk\ndata: {\"chunk\":\"hi\"}\n\n"
	if buf.String() != expected {
		t.Errorf("Frame = %q, want %q", buf.String(), expected)
	}
}
