// Package fetch retrieves a URL and reduces it to the plain text, title,
// domain and images the prompt builder and metadata endpoint need.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	fetchTimeout = 15 * time.Second
	userAgent    = "Mozilla/5.0 (compatible; gemgate/1.0)"
	maxImages    = 10
)

var newlineRegex = regexp.MustCompile(`(\n\s*){2,}`)

// Page is the reduced form of a fetched document.
type Page struct {
	URL    string
	Domain string
	Title  string
	Text   string
	Images []string
}

// Fetcher turns a URL into a Page.
type Fetcher interface {
	FetchContent(ctx context.Context, pageURL string) (Page, error)
}

// HTTPFetcher fetches over plain HTTP with goquery extraction.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a bounded timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: fetchTimeout}}
}

// FetchContent retrieves pageURL and extracts its text content.
func (f *HTTPFetcher) FetchContent(ctx context.Context, pageURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("invalid URL %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch URL %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("failed to fetch URL %s: status code %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	return Page{
		URL:    pageURL,
		Domain: Domain(pageURL),
		Title:  extractTitle(doc),
		Text:   extractText(doc),
		Images: extractImages(doc, pageURL),
	}, nil
}

// Domain returns the host part of a URL, without a www. prefix.
func Domain(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

func extractTitle(doc *goquery.Document) string {
	title := doc.Find("head title").First().Text()
	if title != "" {
		return strings.TrimSpace(title)
	}

	ogTitle, _ := doc.Find("meta[property='og:title']").Attr("content")
	if ogTitle != "" {
		return strings.TrimSpace(ogTitle)
	}

	h1Title := doc.Find("h1").First().Text()
	if h1Title != "" {
		return strings.TrimSpace(h1Title)
	}

	return ""
}

var mainContentSelectors = []string{
	"article", "main", ".main-content", ".entry-content", ".post-content",
	".post-body", ".article-body",
	"[role='main']",
	".content", "#content",
}

func extractText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	var textBuilder strings.Builder
	appendBlocks := func(s *goquery.Selection) {
		s.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
			text := strings.TrimSpace(item.Text())
			if text == "" {
				return
			}
			textBuilder.WriteString(text)
			textBuilder.WriteString("\n\n")
		})
	}

	for _, selector := range mainContentSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			appendBlocks(s)
		})
		if textBuilder.Len() > 0 {
			break
		}
	}

	if textBuilder.Len() == 0 {
		appendBlocks(doc.Find("body"))
	}

	cleaned := newlineRegex.ReplaceAllString(textBuilder.String(), "\n")
	return strings.TrimSpace(cleaned)
}

func extractImages(doc *goquery.Document, pageURL string) []string {
	images := []string{}
	seen := map[string]bool{}

	add := func(src string) {
		src = strings.TrimSpace(src)
		if src == "" || seen[src] || len(images) >= maxImages {
			return
		}
		resolved := resolveURL(pageURL, src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[src] = true
		seen[resolved] = true
		images = append(images, resolved)
	}

	// og:image first; it is the page's own pick.
	doc.Find("meta[property='og:image']").Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			add(content)
		}
	})
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src)
		}
	})

	return images
}

func resolveURL(base, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.IsAbs() {
		return refURL.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}
