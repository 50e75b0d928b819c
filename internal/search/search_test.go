package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProvider(t *testing.T) {
	if p, err := NewProvider(ProviderTypeDuckDuckGo); err != nil || p == nil {
		t.Errorf("duckduckgo provider: %v, %v", p, err)
	}
	if p, err := NewProvider(ProviderTypeMock); err != nil || p == nil {
		t.Errorf("mock provider: %v, %v", p, err)
	}
	if p, err := NewProvider(ProviderTypeNone); err != nil || p != nil {
		t.Errorf("none should yield nil provider without error: %v, %v", p, err)
	}
	if _, err := NewProvider("bing"); err != ErrUnsupportedProvider {
		t.Errorf("unsupported type should return ErrUnsupportedProvider, got %v", err)
	}
}

func TestExtractFinalURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"redirect", "/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=abc", "https://example.com/page"},
		{"direct", "https://example.com/page", "https://example.com/page"},
		{"garbage", "javascript:void(0)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractFinalURL(tt.raw); got != tt.expected {
				t.Errorf("extractFinalURL(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestDuckDuckGoParse(t *testing.T) {
	const page = `<html><body>
<div class="result">
  <a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.com%2Fshrimp">Frozen shrimp guide</a>
  <a class="result__snippet">Everything about glazing.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/cold-chain">Cold chain basics</a>
  <a class="result__snippet">Logistics overview.</a>
</div>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	provider := NewDuckDuckGoProvider()
	provider.baseURL = server.URL
	provider.rateLimit = 0

	results, err := provider.Search(context.Background(), "frozen shrimp", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://example.com/shrimp" {
		t.Errorf("Redirect URL not unwrapped: %q", results[0].URL)
	}
	if results[0].Title != "Frozen shrimp guide" || results[0].Snippet != "Everything about glazing." {
		t.Errorf("First result wrong: %+v", results[0])
	}
	if results[1].Domain != "example.org" || results[1].Rank != 2 {
		t.Errorf("Second result wrong: %+v", results[1])
	}
}

func TestMockProviderCap(t *testing.T) {
	provider := NewMockProvider()
	results, err := provider.Search(context.Background(), "anything", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected cap at 1, got %d", len(results))
	}
	if provider.Calls != 1 {
		t.Errorf("Calls = %d, want 1", provider.Calls)
	}
}
