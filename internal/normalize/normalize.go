// Package normalize turns loosely-parsed model output into well-formed domain
// values: missing fields get documented defaults, numbers are clamped, enums
// are validated, and business invariants are enforced.
package normalize

import (
	"fmt"

	"gemgate/internal/core"
	"gemgate/internal/parse"
)

const (
	defaultLevel      = "N/A"
	defaultConfidence = 0.5
)

var questionTypes = map[string]bool{
	"fact":        true,
	"analysis":    true,
	"exploratory": true,
	"analytical":  true, // line-fallback marker, passed through
}

var componentLevels = map[string]bool{
	"High": true, "Moderate": true, "Low": true, "Lacking": true, "N/A": true,
}

var trustLevels = map[string]bool{
	"Highly Trustworthy": true, "Trustworthy": true,
	"Moderately Trustworthy": true, core.TrustUntrustworthy: true, "N/A": true,
}

var overallLevels = map[string]bool{
	"Highest E-E-A-T": true, "High E-E-A-T": true, "Moderate E-E-A-T": true,
	"Low E-E-A-T": true, core.OverallLowest: true, "N/A": true,
}

var pageQualityRatings = map[string]bool{
	"Highest": true, "High": true, "Medium": true, "Low": true, core.PageQualityLowest: true,
}

// Confidence coerces an untyped confidence value to a float64 in [0,1].
// Non-numeric or missing values take the default.
func Confidence(value any) float64 {
	var conf float64
	switch v := value.(type) {
	case float64:
		conf = v
	case int:
		conf = float64(v)
	default:
		return defaultConfidence
	}
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// Questions normalizes parsed questions: empty texts are dropped, missing ids
// and types get defaults, confidences are coerced, and the list is capped at
// maxQuestions.
func Questions(loose []parse.Question, maxQuestions int) []core.Question {
	questions := []core.Question{}
	for _, q := range loose {
		if q.Text == "" {
			continue
		}
		id := q.ID
		if id == "" {
			id = fmt.Sprintf("q%d", len(questions)+1)
		}
		// Unknown types take the same marker the line fallback uses, so a
		// consumer sees one out-of-enum value, not two.
		qtype := q.Type
		if !questionTypes[qtype] {
			qtype = "analytical"
		}
		questions = append(questions, core.Question{
			ID:         id,
			Text:       q.Text,
			Type:       qtype,
			Confidence: Confidence(q.Confidence),
		})
		if len(questions) == maxQuestions {
			break
		}
	}
	return questions
}

func component(loose parse.Component, allowed map[string]bool) core.EEATComponent {
	level := loose.Level
	if !allowed[level] {
		level = defaultLevel
	}
	rationale := loose.Rationale
	if rationale == nil {
		rationale = []string{}
	}
	return core.EEATComponent{
		Level:      level,
		Confidence: Confidence(loose.Confidence),
		Rationale:  rationale,
	}
}

func isYMYL(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "yes"
	}
	return false
}

// EEAT normalizes a parsed assessment. The trust gate is applied after every
// other rule: an Untrustworthy trust component forces the overall level and
// page quality rating to their floor regardless of what the model claimed.
func EEAT(loose parse.EEAT) core.EEATResult {
	result := core.EEATResult{
		Experience:        component(loose.Experience, componentLevels),
		Expertise:         component(loose.Expertise, componentLevels),
		Authoritativeness: component(loose.Authoritativeness, componentLevels),
		Trust:             component(loose.Trust, trustLevels),
		OverallLevel:      loose.OverallLevel,
		PageQualityRating: loose.PageQualityRating,
		IsYMYL:            isYMYL(loose.IsYMYL),
		EvidenceSummary: core.EEATEvidence{
			OnPage:   loose.EvidenceSummary.OnPage,
			External: loose.EvidenceSummary.External,
		},
		Recommendations: loose.Recommendations,
	}

	if !overallLevels[result.OverallLevel] {
		result.OverallLevel = defaultLevel
	}
	if !pageQualityRatings[result.PageQualityRating] {
		result.PageQualityRating = "Medium"
	}
	if result.EvidenceSummary.OnPage == nil {
		result.EvidenceSummary.OnPage = []string{}
	}
	if result.EvidenceSummary.External == nil {
		result.EvidenceSummary.External = []string{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}

	// Trust gate, always last.
	if result.Trust.Level == core.TrustUntrustworthy {
		result.OverallLevel = core.OverallLowest
		result.PageQualityRating = core.PageQualityLowest
	}

	return result
}
