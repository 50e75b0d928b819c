package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"gemgate/internal/gateway"
	"gemgate/internal/llm"
	"gemgate/internal/logger"
	"gemgate/internal/stream"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", err)
	}
}

// respondEnvelope writes pre-rendered envelope bytes untouched, which is what
// keeps cache hits byte-identical to the original response.
func respondEnvelope(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Error("Failed to write response", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	var badReq *gateway.BadRequestError
	if errors.As(err, &badReq) {
		respondJSON(w, http.StatusBadRequest, map[string]any{"detail": badReq.Message})
		return
	}

	var validation *gateway.ValidationError
	if errors.As(err, &validation) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail":  []map[string]string{{"field": validation.Field, "message": validation.Message}},
			"message": "Validation failed",
		})
		return
	}

	if errors.Is(err, gateway.ErrContentFetchFailed) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]string{
				"code":    "CONTENT_FETCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	var upstream *gateway.UpstreamError
	if errors.As(err, &upstream) {
		if guidance := llm.Guidance(upstream.Kind); guidance != "" {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{"detail": guidance})
			return
		}
	}

	logger.Error("Request failed", err)
	// TODO: stop echoing internal error text once the legacy clients no
	// longer parse it for their own retry logic.
	respondJSON(w, http.StatusInternalServerError, map[string]any{
		"detail": fmt.Sprintf("Internal server error: %v", err),
	})
}

// decodeURLField undoes percent-encoding the legacy clients apply to URL and
// context inputs. Values that do not decode are used as-is.
func decodeURLField(value string) string {
	if decoded, err := url.QueryUnescape(value); err == nil {
		return decoded
	}
	return value
}

// previousQuestions arrives as a JSON array, a single string, or an empty
// string meaning none.
type previousQuestions []string

func (p *previousQuestions) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*p = nil
		} else {
			*p = []string{single}
		}
		return nil
	}
	return fmt.Errorf("previous_questions must be a string or a list of strings")
}

type questionsBody struct {
	Inputs struct {
		URL               string            `json:"url"`
		Context           string            `json:"context"`
		Prompt            string            `json:"prompt"`
		Lang              string            `json:"lang"`
		Type              string            `json:"type"`
		SourceURL         string            `json:"source_url"`
		PreviousQuestions previousQuestions `json:"previous_questions"`
	} `json:"inputs"`
	User string `json:"user"`
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var body questionsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid JSON body"})
		return
	}

	rendered, err := s.service.GenerateQuestions(r.Context(), gateway.QuestionsRequest{
		URL:               decodeURLField(body.Inputs.URL),
		Context:           decodeURLField(body.Inputs.Context),
		Prompt:            body.Inputs.Prompt,
		Lang:              body.Inputs.Lang,
		Type:              body.Inputs.Type,
		SourceURL:         body.Inputs.SourceURL,
		PreviousQuestions: body.Inputs.PreviousQuestions,
		User:              body.User,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondEnvelope(w, rendered)
}

type metadataBody struct {
	Inputs struct {
		URL       string `json:"url"`
		Query     string `json:"query"`
		TagPrompt string `json:"tag_prompt"`
	} `json:"inputs"`
	User string `json:"user"`
}

func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	var body metadataBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid JSON body"})
		return
	}

	rendered, err := s.service.GetMetadata(r.Context(), gateway.MetadataRequest{
		URL:       decodeURLField(body.Inputs.URL),
		Query:     body.Inputs.Query,
		TagPrompt: body.Inputs.TagPrompt,
		User:      body.User,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondEnvelope(w, rendered)
}

type answerBody struct {
	Inputs struct {
		Query     string `json:"query"`
		URL       string `json:"url"`
		Prompt    string `json:"prompt"`
		ContentID string `json:"content_id"`
		Lang      string `json:"lang"`
	} `json:"inputs"`
	User   string `json:"user"`
	Stream bool   `json:"stream"`
}

func (s *Server) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	var body answerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid JSON body"})
		return
	}

	req := gateway.AnswerRequest{
		Query:     body.Inputs.Query,
		URL:       decodeURLField(body.Inputs.URL),
		Prompt:    body.Inputs.Prompt,
		ContentID: body.Inputs.ContentID,
		Lang:      body.Inputs.Lang,
		User:      body.User,
	}

	if body.Stream {
		s.streamAnswer(w, r, req)
		return
	}

	rendered, err := s.service.GetAnswer(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondEnvelope(w, rendered)
}

func (s *Server) streamAnswer(w http.ResponseWriter, r *http.Request, req gateway.AnswerRequest) {
	events, err := s.service.StreamAnswer(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, fmt.Errorf("streaming unsupported by connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		if err := stream.WriteEvent(w, event); err != nil {
			logger.Warn("SSE write failed, client likely disconnected", "error", err)
			return
		}
		flusher.Flush()
	}
}

type eeatBody struct {
	InputType string `json:"input_type"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	Metadata  struct {
		Author        string `json:"author"`
		PublishDate   string `json:"publish_date"`
		TopicCategory string `json:"topic_category"`
	} `json:"metadata"`
}

func (s *Server) handleEEAT(w http.ResponseWriter, r *http.Request) {
	var body eeatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"detail": "Invalid JSON body"})
		return
	}

	rendered, err := s.service.AssessEEAT(r.Context(), gateway.EEATRequest{
		InputType:     body.InputType,
		URL:           decodeURLField(body.URL),
		Content:       body.Content,
		Author:        body.Metadata.Author,
		PublishDate:   body.Metadata.PublishDate,
		TopicCategory: body.Metadata.TopicCategory,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondEnvelope(w, rendered)
}
