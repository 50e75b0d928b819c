// Package prompt builds the exact text sent to the model for each gateway
// operation. Prompts are deterministic: same inputs, same string.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Hard character budgets per operation. Truncation is a plain slice, not
// token-aware, to keep latency and cost bounded.
const (
	QuestionsContentLimit = 5000
	AnswerContentLimit    = 10000
	EEATContentLimit      = 15000
	TagsContentLimit      = 3000
	SummaryContentLimit   = 5000
)

// GenOptions is the generation configuration paired with a prompt.
type GenOptions struct {
	Temperature float32 // 0 means model default
	MaxTokens   int32   // 0 means model default
}

// AnswerGenOptions returns the generation configuration for answer prompts.
func AnswerGenOptions() GenOptions { return GenOptions{Temperature: 0.7, MaxTokens: 800} }

// EEATGenOptions returns the generation configuration for assessment prompts.
func EEATGenOptions() GenOptions { return GenOptions{Temperature: 0.3, MaxTokens: 2000} }

// languageNames maps language codes to the names interpolated into prompts.
var languageNames = map[string]string{
	"zh-tw": "繁體中文",
	"zh-cn": "简体中文",
	"zh":    "中文",
	"en":    "English",
	"ja":    "日本語",
	"ko":    "한국어",
	"es":    "Spanish",
	"fr":    "French",
	"de":    "German",
}

// LanguageName resolves a language code to a human-readable name,
// falling back to the raw code.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// truncate cuts s to at most limit characters. Budgets count runes, not
// bytes: the dominant content language is Chinese, and a byte slice would
// both shrink the budget threefold and cut multi-byte runes in half.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

const questionsJSONShape = `{"questions": [{"id": "q1", "text": "Question text", "type": "fact|analysis|exploratory", "confidence": 0.0-1.0}]}`

// QuestionsInput collects everything the questions prompt depends on.
type QuestionsInput struct {
	Content           string
	Lang              string
	MaxQuestions      int
	PreviousQuestions []string
	CustomPrompt      string
}

// BuildQuestions constructs the question-generation prompt.
//
// A non-blank custom prompt replaces the default instruction entirely; the
// format requirements are still appended so the output stays parseable.
func BuildQuestions(in QuestionsInput) string {
	langName := LanguageName(in.Lang)

	var instruction, requirements string
	if custom := strings.TrimSpace(in.CustomPrompt); custom != "" {
		instruction = custom
		requirements = fmt.Sprintf(`Requirements:
1. Follow the instruction: %s
2. Generate %d questions in %s
3. Keep questions short and simple (under 20 words for Chinese, under 15 words for English)
4. Return JSON format: %s`, custom, in.MaxQuestions, langName, questionsJSONShape)
	} else {
		instruction = fmt.Sprintf("Generate %d short, simple, direct questions in %s", in.MaxQuestions, langName)
		requirements = fmt.Sprintf(`Requirements:
1. Questions must be short and simple (like: "什麼是包冰？" or "Why does frozen shrimp have ice?")
2. Each question should be direct and easy to understand
3. Avoid long, complex questions
4. Return JSON format: %s`, questionsJSONShape)
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContent:\n")
	b.WriteString(truncate(in.Content, QuestionsContentLimit))
	b.WriteString("\n\n")
	b.WriteString(requirements)
	if len(in.PreviousQuestions) > 0 {
		b.WriteString("\n\nPrevious questions to avoid: ")
		b.WriteString(strings.Join(in.PreviousQuestions, ", "))
	}
	b.WriteString("\n\nGenerate questions now:")

	return b.String()
}

// AnswerInput collects everything the answer prompts depend on.
type AnswerInput struct {
	Content      string
	Question     string
	Lang         string
	CustomPrompt string
}

// BuildAnswer constructs the grounded-answer prompt.
func BuildAnswer(in AnswerInput) string {
	instruction := strings.TrimSpace(in.CustomPrompt)
	if instruction == "" {
		instruction = fmt.Sprintf("Based on the provided content, answer the question comprehensively in %s.", LanguageName(in.Lang))
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContent:\n")
	b.WriteString(truncate(in.Content, AnswerContentLimit))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(in.Question)
	b.WriteString(`

Requirements:
1. Provide a clear, analytical answer
2. Cite specific parts of the content when relevant
3. If the content doesn't contain enough information, state that clearly
4. Format response in clear paragraphs
5. Use markdown for formatting if needed

Answer:`)

	return b.String()
}

// BuildStreamAnswer constructs the streaming-answer prompt. It skips the
// formatting requirements block so chunks read as plain prose from the first
// token.
func BuildStreamAnswer(in AnswerInput) string {
	instruction := strings.TrimSpace(in.CustomPrompt)
	if instruction == "" {
		instruction = fmt.Sprintf("Based on the provided content, answer the question comprehensively in %s.", LanguageName(in.Lang))
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContent:\n")
	b.WriteString(truncate(in.Content, AnswerContentLimit))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(in.Question)
	b.WriteString("\n\nAnswer:")

	return b.String()
}

// BuildTags constructs the topic-tag prompt. The output contract is a bare
// comma-separated list, not JSON.
func BuildTags(content, customPrompt string) string {
	if custom := strings.TrimSpace(customPrompt); custom != "" {
		return fmt.Sprintf("%s\n\nContent:\n%s\n\nTags:", custom, truncate(content, TagsContentLimit))
	}

	return fmt.Sprintf(`Generate 5 concise topic tags for the following content.
Return only a comma-separated list of tags, no explanation.

Content:
%s

Tags:`, truncate(content, TagsContentLimit))
}

// BuildSummary constructs the short-summary prompt used by the metadata
// operation.
func BuildSummary(content string) string {
	return fmt.Sprintf(`Summarize the following web page content in 2-3 sentences.
Write only the summary, no preamble or meta-commentary.

Content:
%s

Summary:`, truncate(content, SummaryContentLimit))
}

// EEATInput collects everything the assessment prompt depends on.
type EEATInput struct {
	Content       string
	Author        string
	PublishDate   string
	TopicCategory string
}

const eeatJSONShape = `{
  "experience": {"level": "High|Moderate|Low|Lacking", "confidence": 0.0-1.0, "rationale": ["...", "...", "..."]},
  "expertise": {"level": "High|Moderate|Low|Lacking", "confidence": 0.0-1.0, "rationale": ["...", "...", "..."]},
  "authoritativeness": {"level": "High|Moderate|Low|Lacking", "confidence": 0.0-1.0, "rationale": ["...", "...", "..."]},
  "trust": {"level": "Highly Trustworthy|Trustworthy|Moderately Trustworthy|Untrustworthy", "confidence": 0.0-1.0, "rationale": ["...", "...", "..."]},
  "overall_level": "Highest E-E-A-T|High E-E-A-T|Moderate E-E-A-T|Low E-E-A-T|Lowest E-E-A-T",
  "page_quality_rating": "Highest|High|Medium|Low|Lowest",
  "is_ymyl": true|false,
  "evidence_summary": {"on_page": ["..."], "external": ["..."]},
  "recommendations": ["..."]
}`

// BuildEEAT constructs the content-quality assessment prompt. Available
// metadata is prepended as labeled lines; absent fields emit nothing.
func BuildEEAT(in EEATInput) string {
	var b strings.Builder
	b.WriteString("You are a search quality rater. Assess the following content for E-E-A-T (Experience, Expertise, Authoritativeness, Trust) following the page quality guidelines.\n\n")

	if in.Author != "" {
		b.WriteString("Author: ")
		b.WriteString(in.Author)
		b.WriteString("\n")
	}
	if in.PublishDate != "" {
		b.WriteString("Published: ")
		b.WriteString(in.PublishDate)
		b.WriteString("\n")
	}
	if in.TopicCategory != "" {
		b.WriteString("Topic: ")
		b.WriteString(in.TopicCategory)
		b.WriteString("\n")
	}

	b.WriteString("\nContent:\n")
	b.WriteString(truncate(in.Content, EEATContentLimit))
	b.WriteString(`

Requirements:
1. Score each of the four components independently; do not let one dominate the others
2. Give 3-5 short rationale statements per component, grounded in the content
3. Decide whether the topic is YMYL (Your Money or Your Life) and weigh trust accordingly
4. List on-page evidence separately from external evidence you would want to verify
5. Provide concrete recommendations for improving the weakest components
6. Return JSON format: `)
	b.WriteString(eeatJSONShape)
	b.WriteString("\n\nAssess the content now:")

	return b.String()
}
