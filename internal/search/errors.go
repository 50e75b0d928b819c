package search

import "errors"

var (
	// ErrUnsupportedProvider is returned when an unsupported provider type is specified
	ErrUnsupportedProvider = errors.New("unsupported search provider")

	// ErrNoResults is returned when a search returns no results
	ErrNoResults = errors.New("no search results found")

	// ErrProviderUnavailable is returned when a provider service is unavailable
	ErrProviderUnavailable = errors.New("search provider is currently unavailable")
)
