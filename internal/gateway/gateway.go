// Package gateway is the core of the façade: each operation validates its
// inputs, consults the cache, gathers content, prompts the model, parses and
// normalizes the output, and renders the configured wire envelope.
package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gemgate/internal/cache"
	"gemgate/internal/citations"
	"gemgate/internal/core"
	"gemgate/internal/envelope"
	"gemgate/internal/fetch"
	"gemgate/internal/llm"
	"gemgate/internal/logger"
	"gemgate/internal/normalize"
	"gemgate/internal/parse"
	"gemgate/internal/prompt"
	"gemgate/internal/search"
	"gemgate/internal/stream"
)

const maxQuestions = 5

// TextGenerator is the model collaborator.
type TextGenerator interface {
	GenerateText(ctx context.Context, promptText string, opts llm.Options) (llm.Result, error)
	StreamText(ctx context.Context, promptText string, opts llm.Options) <-chan llm.Chunk
	Model() string
}

// ContentStore persists and resolves prompting content by id.
type ContentStore interface {
	PutContent(ctx context.Context, record core.ContentRecord) error
	GetContent(ctx context.Context, id string) (core.ContentRecord, bool, error)
}

// Config carries the per-process knobs the gateway needs.
type Config struct {
	Envelope         envelope.Mode
	Provider         string // provider string echoed in envelopes; defaults to the model name
	QuestionsTTL     time.Duration
	MetadataTTL      time.Duration
	AnswerTTL        time.Duration
	EEATTTL          time.Duration
	SearchMaxResults int
}

// Gateway wires the collaborators together. All dependencies are interfaces
// so tests can substitute fakes.
type Gateway struct {
	model    TextGenerator
	cache    cache.Cache
	fetcher  fetch.Fetcher
	contents ContentStore
	searcher search.Provider // nil disables source lookup
	cfg      Config
}

// New creates a gateway. searcher may be nil.
func New(model TextGenerator, responseCache cache.Cache, fetcher fetch.Fetcher, contents ContentStore, searcher search.Provider, cfg Config) *Gateway {
	if cfg.Provider == "" {
		cfg.Provider = model.Model()
	}
	if cfg.SearchMaxResults <= 0 {
		cfg.SearchMaxResults = 3
	}
	return &Gateway{
		model:    model,
		cache:    responseCache,
		fetcher:  fetcher,
		contents: contents,
		searcher: searcher,
		cfg:      cfg,
	}
}

// ContentID is the stable identifier of a piece of prompting content.
func ContentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// lookup returns cached envelope bytes verbatim. A stored response keeps its
// original meta (including cached:false and task timestamps) — the stored
// bytes are the contract.
func (g *Gateway) lookup(ctx context.Context, key string) ([]byte, bool) {
	value, found, err := g.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Cache read failed", "key", key, "error", err)
		return nil, false
	}
	return value, found
}

func (g *Gateway) storeResponse(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := g.cache.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("Cache write failed", "key", key, "error", err)
	}
}

func (g *Gateway) render(outputs map[string]any, tokensUsed int, started time.Time, quota *int) ([]byte, error) {
	return envelope.Render(g.cfg.Envelope, envelope.Response{
		Outputs:         outputs,
		Provider:        g.cfg.Provider,
		TokensUsed:      tokensUsed,
		LatencyMS:       time.Since(started).Milliseconds(),
		Cached:          false,
		SearchQuotaUsed: quota,
		TaskID:          uuid.NewString(),
		CreatedAt:       started,
		FinishedAt:      time.Now(),
	})
}

func genOpts(o prompt.GenOptions) llm.Options {
	return llm.Options{Temperature: o.Temperature, MaxTokens: o.MaxTokens}
}

func (g *Gateway) generate(ctx context.Context, promptText string, opts llm.Options) (llm.Result, error) {
	result, err := g.model.GenerateText(ctx, promptText, opts)
	if err != nil {
		return llm.Result{}, &UpstreamError{Kind: llm.Classify(err), Err: err}
	}
	return result, nil
}

// QuestionsRequest is the decoded input of the question-generation operation.
type QuestionsRequest struct {
	URL               string
	Context           string
	Prompt            string
	Lang              string
	Type              string
	SourceURL         string
	PreviousQuestions []string
	User              string
}

// GenerateQuestions produces up to five questions for a URL or a pasted
// context, returning rendered envelope bytes.
func (g *Gateway) GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]byte, error) {
	if req.URL == "" && req.Context == "" {
		return nil, &BadRequestError{Message: "Either url or context is required"}
	}
	if req.Lang == "" {
		req.Lang = "zh-tw"
	}

	key := cache.DeriveKey("generateQuestions", map[string]string{
		"url":        req.URL,
		"context":    req.Context,
		"lang":       req.Lang,
		"type":       req.Type,
		"source_url": req.SourceURL,
	}, req.User)
	if value, found := g.lookup(ctx, key); found {
		return value, nil
	}

	started := time.Now()
	content := req.Context
	if content == "" {
		page, err := g.fetcher.FetchContent(ctx, req.URL)
		if err != nil {
			return nil, &ValidationError{Field: "url", Message: fmt.Sprintf("failed to fetch content: %v", err)}
		}
		content = page.Text
	}

	contentID := ContentID(content)
	if err := g.contents.PutContent(ctx, core.ContentRecord{
		ID:         contentID,
		URL:        req.URL,
		Text:       content,
		DateStored: time.Now().UTC(),
	}); err != nil {
		logger.Warn("Content persistence failed", "content_id", contentID, "error", err)
	}

	result, err := g.generate(ctx, prompt.BuildQuestions(prompt.QuestionsInput{
		Content:           content,
		Lang:              req.Lang,
		MaxQuestions:      maxQuestions,
		PreviousQuestions: req.PreviousQuestions,
		CustomPrompt:      req.Prompt,
	}), llm.Options{})
	if err != nil {
		return nil, err
	}

	questions := normalize.Questions(parse.Questions(result.Text, maxQuestions), maxQuestions)
	rendered, err := g.render(map[string]any{
		"result":     questions,
		"content_id": contentID,
	}, result.TokensUsed, started, nil)
	if err != nil {
		return nil, err
	}

	g.storeResponse(ctx, key, rendered, g.cfg.QuestionsTTL)
	return rendered, nil
}

// MetadataRequest is the decoded input of the metadata operation.
type MetadataRequest struct {
	URL       string
	Query     string
	TagPrompt string
	User      string
}

// GetMetadata extracts page metadata: domain, title, a model summary, topic
// tags, images, and supporting sources from the search collaborator.
func (g *Gateway) GetMetadata(ctx context.Context, req MetadataRequest) ([]byte, error) {
	if req.URL == "" {
		return nil, &BadRequestError{Message: "url is required"}
	}

	key := cache.DeriveKey("getMetadata", map[string]string{
		"url":   req.URL,
		"query": req.Query,
	}, req.User)
	if value, found := g.lookup(ctx, key); found {
		return value, nil
	}

	started := time.Now()
	page, err := g.fetcher.FetchContent(ctx, req.URL)
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: fmt.Sprintf("failed to fetch content: %v", err)}
	}

	summary, err := g.generate(ctx, prompt.BuildSummary(page.Text), llm.Options{})
	if err != nil {
		return nil, err
	}
	tagsResult, err := g.generate(ctx, prompt.BuildTags(page.Text, req.TagPrompt), llm.Options{})
	if err != nil {
		return nil, err
	}

	sources := []core.Source{}
	quotaUsed := 0
	if g.searcher != nil {
		searchQuery := req.Query
		if searchQuery == "" {
			searchQuery = page.Title
		}
		if searchQuery != "" {
			quotaUsed = 1
			results, err := g.searcher.Search(ctx, searchQuery, g.cfg.SearchMaxResults)
			if err != nil {
				logger.Warn("Source search failed", "query", searchQuery, "error", err)
			}
			for _, r := range results {
				sources = append(sources, core.Source{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
			}
		}
	}

	rendered, err := g.render(map[string]any{
		"url":     req.URL,
		"domain":  page.Domain,
		"title":   page.Title,
		"summary": summary.Text,
		"sources": sources,
		"tags":    parse.Tags(tagsResult.Text),
		"images":  page.Images,
	}, summary.TokensUsed+tagsResult.TokensUsed, started, &quotaUsed)
	if err != nil {
		return nil, err
	}

	g.storeResponse(ctx, key, rendered, g.cfg.MetadataTTL)
	return rendered, nil
}

// AnswerRequest is the decoded input of the grounded-answer operation.
type AnswerRequest struct {
	Query     string
	URL       string
	Prompt    string
	ContentID string
	Lang      string
	User      string
}

// resolveContent gathers the grounding text for an answer. An unknown
// content_id or a failed fetch yields empty content; the model is still
// called and answers from its own knowledge.
func (g *Gateway) resolveContent(ctx context.Context, req AnswerRequest) string {
	if req.ContentID != "" {
		record, found, err := g.contents.GetContent(ctx, req.ContentID)
		if err != nil {
			logger.Warn("Content lookup failed", "content_id", req.ContentID, "error", err)
		}
		if found {
			return record.Text
		}
		logger.Warn("Unknown content_id, answering without grounding", "content_id", req.ContentID)
		return ""
	}
	if req.URL != "" {
		page, err := g.fetcher.FetchContent(ctx, req.URL)
		if err != nil {
			logger.Warn("Answer content fetch failed, answering without grounding", "url", req.URL, "error", err)
			return ""
		}
		return page.Text
	}
	return ""
}

// GetAnswer answers a question grounded in stored or fetched content.
func (g *Gateway) GetAnswer(ctx context.Context, req AnswerRequest) ([]byte, error) {
	if req.Query == "" {
		return nil, &BadRequestError{Message: "query is required"}
	}
	if req.Lang == "" {
		req.Lang = "zh-tw"
	}

	key := cache.DeriveKey("getAnswer", map[string]string{
		"query":      req.Query,
		"content_id": req.ContentID,
		"url":        req.URL,
		"lang":       req.Lang,
	}, req.User)
	if value, found := g.lookup(ctx, key); found {
		return value, nil
	}

	started := time.Now()
	content := g.resolveContent(ctx, req)

	result, err := g.generate(ctx, prompt.BuildAnswer(prompt.AnswerInput{
		Content:      content,
		Question:     req.Query,
		Lang:         req.Lang,
		CustomPrompt: req.Prompt,
	}), genOpts(prompt.AnswerGenOptions()))
	if err != nil {
		return nil, err
	}

	rendered, err := g.render(map[string]any{
		"result": result.Text,
	}, result.TokensUsed, started, nil)
	if err != nil {
		return nil, err
	}

	g.storeResponse(ctx, key, rendered, g.cfg.AnswerTTL)
	return rendered, nil
}

// StreamAnswer answers a question as an SSE event stream. Nothing is cached;
// validation errors are returned before any event is produced.
func (g *Gateway) StreamAnswer(ctx context.Context, req AnswerRequest) (<-chan stream.Event, error) {
	if req.Query == "" {
		return nil, &BadRequestError{Message: "query is required"}
	}
	if req.Lang == "" {
		req.Lang = "zh-tw"
	}

	content := g.resolveContent(ctx, req)
	chunks := g.model.StreamText(ctx, prompt.BuildStreamAnswer(prompt.AnswerInput{
		Content:      content,
		Question:     req.Query,
		Lang:         req.Lang,
		CustomPrompt: req.Prompt,
	}), genOpts(prompt.AnswerGenOptions()))

	coordinator := &stream.Coordinator{
		Provider: g.cfg.Provider,
		Extract:  citations.Extract,
	}
	return coordinator.Run(ctx, chunks), nil
}

// EEATRequest is the decoded input of the content-quality assessment.
type EEATRequest struct {
	InputType     string // "url" or "content"
	URL           string
	Content       string
	Author        string
	PublishDate   string
	TopicCategory string
}

// AssessEEAT rates a page or pasted content against the E-E-A-T quality
// framework. Assessments are keyed without a user: the rating of a page does
// not depend on who asks.
func (g *Gateway) AssessEEAT(ctx context.Context, req EEATRequest) ([]byte, error) {
	switch req.InputType {
	case "url":
		if req.URL == "" {
			return nil, &BadRequestError{Message: "url is required when input_type is url"}
		}
	case "content":
		if req.Content == "" {
			return nil, &BadRequestError{Message: "content is required when input_type is content"}
		}
	default:
		return nil, &BadRequestError{Message: "input_type must be url or content"}
	}

	key := cache.DeriveKey("eeat", map[string]string{
		"input_type": req.InputType,
		"url":        req.URL,
		"content":    req.Content,
	}, "")
	if value, found := g.lookup(ctx, key); found {
		return value, nil
	}

	started := time.Now()
	content := req.Content
	if req.InputType == "url" {
		page, err := g.fetcher.FetchContent(ctx, req.URL)
		if err != nil || page.Text == "" {
			return nil, ErrContentFetchFailed
		}
		content = page.Text
	}

	result, err := g.generate(ctx, prompt.BuildEEAT(prompt.EEATInput{
		Content:       content,
		Author:        req.Author,
		PublishDate:   req.PublishDate,
		TopicCategory: req.TopicCategory,
	}), genOpts(prompt.EEATGenOptions()))
	if err != nil {
		return nil, err
	}

	loose, err := parse.AssessmentEEAT(result.Text)
	if err != nil {
		return nil, fmt.Errorf("assessment output unusable: %w", err)
	}
	assessment := normalize.EEAT(loose)

	rendered, err := g.render(map[string]any{
		"experience":          assessment.Experience,
		"expertise":           assessment.Expertise,
		"authoritativeness":   assessment.Authoritativeness,
		"trust":               assessment.Trust,
		"overall_level":       assessment.OverallLevel,
		"page_quality_rating": assessment.PageQualityRating,
		"is_ymyl":             assessment.IsYMYL,
		"evidence_summary":    assessment.EvidenceSummary,
		"recommendations":     assessment.Recommendations,
	}, result.TokensUsed, started, nil)
	if err != nil {
		return nil, err
	}

	g.storeResponse(ctx, key, rendered, g.cfg.EEATTTL)
	return rendered, nil
}
