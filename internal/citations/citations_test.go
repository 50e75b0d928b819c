package citations

import "testing"

func TestExtract(t *testing.T) {
	answer := "Glazing is standard practice (see https://seafood.example.com/glazing). " +
		"Industry limits are documented at https://standards.example.org/ice-content. " +
		"More at https://seafood.example.com/glazing."

	citations := Extract(answer)
	if len(citations) != 2 {
		t.Fatalf("Expected 2 distinct citations, got %d", len(citations))
	}
	if citations[0].URL != "https://seafood.example.com/glazing" {
		t.Errorf("First URL = %q", citations[0].URL)
	}
	if citations[0].Text != "seafood.example.com" {
		t.Errorf("First publisher = %q", citations[0].Text)
	}
	if citations[1].URL != "https://standards.example.org/ice-content" {
		t.Errorf("Second URL = %q", citations[1].URL)
	}
	if citations[0].Span >= citations[1].Span {
		t.Errorf("Spans not in appearance order: %d, %d", citations[0].Span, citations[1].Span)
	}
}

func TestExtract_TrailingPunctuation(t *testing.T) {
	citations := Extract("Read https://example.com/a. Then stop.")
	if len(citations) != 1 {
		t.Fatalf("Expected 1 citation, got %d", len(citations))
	}
	if citations[0].URL != "https://example.com/a" {
		t.Errorf("Trailing period not stripped: %q", citations[0].URL)
	}
}

func TestExtract_NoURLs(t *testing.T) {
	citations := Extract("No sources were used for this answer.")
	if citations == nil {
		t.Fatal("Extract must return an empty slice, not nil")
	}
	if len(citations) != 0 {
		t.Errorf("Expected no citations, got %v", citations)
	}
}

func TestPublisher(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.nytimes.com/article", "nytimes.com"},
		{"https://blog.example.com/post", "blog.example.com"},
		{"not-a-url", "not-a-url"},
	}

	for _, tt := range tests {
		if got := Publisher(tt.url); got != tt.expected {
			t.Errorf("Publisher(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}
