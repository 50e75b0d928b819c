package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gemgate/internal/core"
)

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.db == nil {
		t.Error("Store database should not be nil")
	}

	dbPath := filepath.Join(tmpDir, "gemgate.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	// Try to create store inside a file (not directory)
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(invalidPath, []byte("test"), 0644)

	_, err := NewStore(invalidPath)
	if err == nil {
		t.Error("Expected error when creating store in invalid directory")
	}
}

func TestSet_Get(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	envelope := []byte(`{"event":"workflow_finished","data":{"outputs":{"result":""}}}`)

	if _, hit, _ := store.Get(ctx, "ai_answer_abc"); hit {
		t.Error("Expected miss before Set")
	}

	if err := store.Set(ctx, "ai_answer_abc", envelope, 5*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, hit, err := store.Get(ctx, "ai_answer_abc")
	if err != nil || !hit {
		t.Fatalf("Expected hit, got hit=%v err=%v", hit, err)
	}
	if string(value) != string(envelope) {
		t.Errorf("Stored bytes changed: %s", value)
	}
}

func TestGet_Expired(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, hit, _ := store.Get(ctx, "k"); hit {
		t.Error("Expired entry should miss")
	}
}

func TestSet_Overwrites(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	_ = store.Set(ctx, "k", []byte("first"), time.Minute)
	_ = store.Set(ctx, "k", []byte("second"), time.Minute)

	value, hit, _ := store.Get(ctx, "k")
	if !hit || string(value) != "second" {
		t.Errorf("Expected wholesale overwrite, got hit=%v value=%s", hit, value)
	}
}

func TestPutContent_GetContent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	text := "Frozen shrimp often shows a layer of ice."
	sum := sha256.Sum256([]byte(text))

	record := core.ContentRecord{
		ID:         hex.EncodeToString(sum[:]),
		URL:        "https://example.com/shrimp",
		Text:       text,
		DateStored: time.Now().UTC(),
	}

	if err := store.PutContent(ctx, record); err != nil {
		t.Fatalf("PutContent failed: %v", err)
	}

	got, found, err := store.GetContent(ctx, record.ID)
	if err != nil || !found {
		t.Fatalf("Expected content record, got found=%v err=%v", found, err)
	}
	if got.Text != text {
		t.Errorf("Expected text %q, got %q", text, got.Text)
	}
	if got.URL != record.URL {
		t.Errorf("Expected URL %q, got %q", record.URL, got.URL)
	}
}

func TestGetContent_Missing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	_, found, err := store.GetContent(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("Missing content should not error: %v", err)
	}
	if found {
		t.Error("Expected found=false for unknown id")
	}
}

func TestCleanup(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	_ = store.Set(ctx, "expired", []byte("v"), -time.Hour)
	_ = store.Set(ctx, "live", []byte("v"), time.Hour)
	_ = store.PutContent(ctx, core.ContentRecord{ID: "old", Text: "x", DateStored: time.Now().UTC().Add(-48 * time.Hour)})
	_ = store.PutContent(ctx, core.ContentRecord{ID: "new", Text: "y", DateStored: time.Now().UTC()})

	if err := store.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.ResponseCount != 1 {
		t.Errorf("Expected 1 live response, got %d", stats.ResponseCount)
	}
	if stats.ContentCount != 1 {
		t.Errorf("Expected 1 live content record, got %d", stats.ContentCount)
	}
}
