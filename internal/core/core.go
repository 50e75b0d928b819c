package core

import "time"

// Question is a single generated question for a piece of content.
type Question struct {
	ID         string  `json:"id"`         // Stable identifier within one result ("q1", "q2", ...)
	Text       string  `json:"text"`       // The question itself
	Type       string  `json:"type"`       // One of "fact", "analysis", "exploratory" (or "analytical" from the line fallback)
	Confidence float64 `json:"confidence"` // Model confidence in [0, 1]
}

// QuestionsResult is the normalized output of the question-generation operation.
type QuestionsResult struct {
	Questions  []Question `json:"questions"`
	ContentID  string     `json:"content_id"`  // Identifier of the persisted prompting content
	TokensUsed int        `json:"tokens_used"` // Total tokens reported by the model
}

// AnswerResult is the normalized output of the grounded-answer operation.
type AnswerResult struct {
	Answer     string `json:"answer"`
	TokensUsed int    `json:"tokens_used"`
}

// Citation points at a URL referenced inside an answer.
type Citation struct {
	URL  string `json:"url"`
	Text string `json:"text"` // Display name of the source, when available
	Span int    `json:"span"` // Byte offset of the first mention inside the answer
}

// Source is one canonical source returned by the metadata operation.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// MetadataResult is the normalized output of the metadata operation.
type MetadataResult struct {
	Domain      string   `json:"domain"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Sources     []Source `json:"sources"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	TokensUsed  int      `json:"tokens_used"`
	SearchQuota int      `json:"search_quota"` // Search API quota consumed for this request
}

// EEATComponent is one independently scored E-E-A-T dimension.
type EEATComponent struct {
	Level      string   `json:"level"`      // Component-specific ordered enum; "N/A" when the model omitted it
	Confidence float64  `json:"confidence"` // Clamped to [0, 1]
	Rationale  []string `json:"rationale"`  // 3-5 short statements supporting the level
}

// EEATEvidence separates on-page signals from external ones.
type EEATEvidence struct {
	OnPage   []string `json:"on_page"`
	External []string `json:"external"`
}

// EEATResult is the normalized output of the content-quality assessment.
//
// Invariant: when Trust.Level is "Untrustworthy", OverallLevel is forced to
// "Lowest E-E-A-T" and PageQualityRating to "Lowest" regardless of what the
// model returned.
type EEATResult struct {
	Experience        EEATComponent `json:"experience"`
	Expertise         EEATComponent `json:"expertise"`
	Authoritativeness EEATComponent `json:"authoritativeness"`
	Trust             EEATComponent `json:"trust"`
	OverallLevel      string        `json:"overall_level"`
	PageQualityRating string        `json:"page_quality_rating"` // Highest, High, Medium, Low, Lowest
	IsYMYL            bool          `json:"is_ymyl"`
	EvidenceSummary   EEATEvidence  `json:"evidence_summary"`
	Recommendations   []string      `json:"recommendations"`
	TokensUsed        int           `json:"tokens_used"`
}

// ContentRecord is a persisted piece of prompting content, addressable by ID
// from later getAnswer calls.
type ContentRecord struct {
	ID         string    `json:"id"`          // sha-256 hex of the text
	URL        string    `json:"url"`         // Source URL, when the content was fetched
	Text       string    `json:"text"`        // Plain text used for prompting
	DateStored time.Time `json:"date_stored"` // Timestamp when the record was written
}

// Trust level that triggers the quality gate.
const TrustUntrustworthy = "Untrustworthy"

// Gated values forced onto a result that fails the trust gate.
const (
	OverallLowest     = "Lowest E-E-A-T"
	PageQualityLowest = "Lowest"
)
