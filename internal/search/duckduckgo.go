package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gemgate/internal/logger"
)

// DuckDuckGoProvider implements Provider against the DuckDuckGo HTML endpoint.
type DuckDuckGoProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	rateLimit time.Duration
	lastCall  time.Time
}

// NewDuckDuckGoProvider creates a new DuckDuckGo search provider.
func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   "https://html.duckduckgo.com/html/",
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		rateLimit: 2 * time.Second,
	}
}

// GetName returns the name of this provider.
func (d *DuckDuckGoProvider) GetName() string {
	return "DuckDuckGo"
}

// Search performs a search using DuckDuckGo and returns results.
func (d *DuckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if elapsed := time.Since(d.lastCall); elapsed < d.rateLimit {
		time.Sleep(d.rateLimit - elapsed)
	}
	d.lastCall = time.Now()

	params := url.Values{}
	params.Set("q", query)
	params.Set("b", "0")
	params.Set("kl", "us-en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	results := d.parseResults(doc, maxResults)
	logger.Info("DuckDuckGo search completed", "query", query, "results_found", len(results))
	return results, nil
}

func (d *DuckDuckGoProvider) parseResults(doc *goquery.Document, maxResults int) []Result {
	var results []Result

	doc.Find("div.result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(results) >= maxResults {
			return false
		}

		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		finalURL := extractFinalURL(href)
		if finalURL == "" {
			return true
		}

		results = append(results, Result{
			URL:     finalURL,
			Title:   strings.TrimSpace(link.Text()),
			Snippet: strings.TrimSpace(s.Find("a.result__snippet").First().Text()),
			Domain:  extractDomain(finalURL),
			Rank:    len(results) + 1,
		})
		return true
	})

	return results
}

// extractFinalURL unwraps DuckDuckGo's redirect URLs
// (/l/?uddg=https%3A//example.com/...&rut=...).
func extractFinalURL(redirectURL string) string {
	if strings.HasPrefix(redirectURL, "/l/?") || strings.HasPrefix(redirectURL, "//duckduckgo.com/l/?") {
		parsed, err := url.Parse(redirectURL)
		if err != nil {
			return ""
		}
		if uddg := parsed.Query().Get("uddg"); uddg != "" {
			decoded, err := url.QueryUnescape(uddg)
			if err != nil {
				return ""
			}
			return decoded
		}
	}

	if strings.HasPrefix(redirectURL, "http") {
		return redirectURL
	}
	return ""
}

func extractDomain(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
