// Package search finds supporting sources for metadata extraction.
package search

import "context"

// Provider is the interface all search backends implement.
type Provider interface {
	// Search returns up to maxResults results for the query.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)

	// GetName returns the name of the search provider.
	GetName() string
}

// Result is a unified search result.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`
	Rank    int    `json:"rank"`
}

// ProviderType selects a search backend.
type ProviderType string

const (
	ProviderTypeDuckDuckGo ProviderType = "duckduckgo"
	ProviderTypeMock       ProviderType = "mock"
	ProviderTypeNone       ProviderType = "none"
)

// NewProvider creates a search provider of the specified type. Type "none"
// returns nil; callers treat a nil provider as search disabled.
func NewProvider(providerType ProviderType) (Provider, error) {
	switch providerType {
	case ProviderTypeDuckDuckGo:
		return NewDuckDuckGoProvider(), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	case ProviderTypeNone, "":
		return nil, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
