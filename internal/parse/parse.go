// Package parse extracts structured data from raw model output. The model is
// instructed to emit JSON but may wrap it in prose, garble it, or ignore the
// instruction entirely; this package never trusts it.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON object is found in the output
// of an operation that has no structural fallback.
var ErrNoJSON = errors.New("no JSON object found in model output")

// ExtractJSONSpan returns the greedy brace-delimited span of raw: leftmost
// '{' to rightmost '}'. The second return value reports whether such a span
// exists; the span is not guaranteed to parse.
func ExtractJSONSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// Question is a loosely-typed question as the model returned it.
// Confidence stays untyped here; the normalizer coerces it.
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Type       string `json:"type"`
	Confidence any    `json:"confidence"`
}

type questionsPayload struct {
	Questions []Question `json:"questions"`
}

// Questions parses question-generation output. When no JSON parses, it falls
// back to line splitting: blank lines and markdown headings are dropped, and
// each remaining line becomes a question with the documented fallback fields,
// up to maxQuestions, in input order.
func Questions(raw string, maxQuestions int) []Question {
	if span, ok := ExtractJSONSpan(raw); ok {
		var payload questionsPayload
		if err := json.Unmarshal([]byte(span), &payload); err == nil {
			return payload.Questions
		}
	}

	var questions []Question
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, Question{
			ID:         fmt.Sprintf("q%d", len(questions)+1),
			Text:       line,
			Type:       "analytical",
			Confidence: 0.85,
		})
		if len(questions) == maxQuestions {
			break
		}
	}

	return questions
}

// Component is a loosely-typed E-E-A-T component.
type Component struct {
	Level      string   `json:"level"`
	Confidence any      `json:"confidence"`
	Rationale  []string `json:"rationale"`
}

// Evidence is the loosely-typed evidence summary.
type Evidence struct {
	OnPage   []string `json:"on_page"`
	External []string `json:"external"`
}

// EEAT is a loosely-typed assessment as the model returned it.
type EEAT struct {
	Experience        Component `json:"experience"`
	Expertise         Component `json:"expertise"`
	Authoritativeness Component `json:"authoritativeness"`
	Trust             Component `json:"trust"`
	OverallLevel      string    `json:"overall_level"`
	PageQualityRating string    `json:"page_quality_rating"`
	IsYMYL            any       `json:"is_ymyl"`
	EvidenceSummary   Evidence  `json:"evidence_summary"`
	Recommendations   []string  `json:"recommendations"`
}

// AssessmentEEAT parses content-quality output. There is no safe structural
// fallback for a multi-field assessment, so a missing or malformed JSON object
// is a hard error.
func AssessmentEEAT(raw string) (EEAT, error) {
	span, ok := ExtractJSONSpan(raw)
	if !ok {
		return EEAT{}, ErrNoJSON
	}

	var assessment EEAT
	if err := json.Unmarshal([]byte(span), &assessment); err != nil {
		return EEAT{}, fmt.Errorf("malformed assessment JSON: %w", err)
	}

	return assessment, nil
}

// Tags parses tag-generation output: a comma-separated list, capped at 5.
func Tags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(strings.TrimSpace(raw), ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == 5 {
			break
		}
	}
	return tags
}
