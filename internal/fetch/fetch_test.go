package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Frozen Shrimp Glazing Explained</title>
  <meta property="og:image" content="/images/hero.jpg">
</head>
<body>
  <nav>Home | Products | About</nav>
  <script>trackPageView();</script>
  <article>
    <h1>Why frozen shrimp is coated in ice</h1>
    <p>Glazing protects shrimp from freezer burn during storage.</p>
    <p>A thin layer of ice is normal and intentional.</p>
    <img src="https://cdn.example.com/shrimp.png">
  </article>
  <footer>Copyright 2025</footer>
</body>
</html>`

func TestFetchContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	page, err := NewHTTPFetcher().FetchContent(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchContent failed: %v", err)
	}

	if page.Title != "Frozen Shrimp Glazing Explained" {
		t.Errorf("Title = %q", page.Title)
	}
	if !strings.Contains(page.Text, "freezer burn") {
		t.Errorf("Text missing article content: %q", page.Text)
	}
	if strings.Contains(page.Text, "trackPageView") || strings.Contains(page.Text, "Copyright") {
		t.Errorf("Boilerplate leaked into text: %q", page.Text)
	}
	if len(page.Images) != 2 {
		t.Fatalf("Expected 2 images, got %v", page.Images)
	}
	if page.Images[0] != server.URL+"/images/hero.jpg" {
		t.Errorf("og:image not resolved first: %v", page.Images)
	}
	if page.Images[1] != "https://cdn.example.com/shrimp.png" {
		t.Errorf("img src wrong: %v", page.Images)
	}
}

func TestFetchContent_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher().FetchContent(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.example.com/path", "example.com"},
		{"https://blog.example.com/post", "blog.example.com"},
		{"not a url", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Domain(tt.url); got != tt.expected {
			t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}
