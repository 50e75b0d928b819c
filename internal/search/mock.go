package search

import (
	"context"
	"fmt"
)

// MockProvider returns canned results, for tests and offline development.
type MockProvider struct {
	Results []Result
	Err     error
	Calls   int
}

// NewMockProvider creates a mock provider with a default result set.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Results: []Result{
			{
				URL:     "https://example.com/article-1",
				Title:   "Example Article One",
				Snippet: "A snippet about the topic.",
				Domain:  "example.com",
				Rank:    1,
			},
			{
				URL:     "https://example.org/article-2",
				Title:   "Example Article Two",
				Snippet: "Another snippet about the topic.",
				Domain:  "example.org",
				Rank:    2,
			},
		},
	}
}

// GetName returns the name of this provider.
func (m *MockProvider) GetName() string {
	return "Mock"
}

// Search returns the configured results, capped at maxResults.
func (m *MockProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	m.Calls++
	if m.Err != nil {
		return nil, fmt.Errorf("mock search: %w", m.Err)
	}
	if len(m.Results) > maxResults {
		return m.Results[:maxResults], nil
	}
	return m.Results, nil
}
