// Package envelope renders results into the wire formats the legacy clients
// expect. Two conventions exist in the wild: the original workflow envelope
// and the later task envelope. One is selected per process from config; each
// mapper is pure and the rest of the system never sees envelope shapes.
package envelope

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Mode selects a wire convention.
type Mode string

const (
	ModeWorkflow Mode = "workflow"
	ModeTask     Mode = "task"
)

// Response carries everything either mapper may need.
type Response struct {
	Outputs         map[string]any
	Provider        string
	TokensUsed      int
	LatencyMS       int64
	Cached          bool
	SearchQuotaUsed *int // metadata only

	// Task-convention fields.
	TaskID     string
	CreatedAt  time.Time
	FinishedAt time.Time
}

type workflowMeta struct {
	TokensUsed      int   `json:"tokens_used"`
	LatencyMS       int64 `json:"latency_ms"`
	Cached          bool  `json:"cached"`
	SearchQuotaUsed *int  `json:"search_api_quota_used,omitempty"`
}

type workflowData struct {
	Outputs  map[string]any `json:"outputs"`
	Provider string         `json:"provider"`
	Meta     workflowMeta   `json:"meta"`
}

type workflowEnvelope struct {
	Event string       `json:"event"`
	Data  workflowData `json:"data"`
}

type taskData struct {
	Status      string         `json:"status"`
	Outputs     map[string]any `json:"outputs"`
	ElapsedTime float64        `json:"elapsed_time"`
	CreatedAt   int64          `json:"created_at"`
	FinishedAt  int64          `json:"finished_at"`
}

type taskEnvelope struct {
	TaskID string   `json:"task_id"`
	Data   taskData `json:"data"`
}

// Render maps a response to envelope bytes in the given mode.
func Render(mode Mode, resp Response) ([]byte, error) {
	switch mode {
	case ModeWorkflow, "":
		return json.Marshal(workflowEnvelope{
			Event: "workflow_finished",
			Data: workflowData{
				Outputs:  resp.Outputs,
				Provider: resp.Provider,
				Meta: workflowMeta{
					TokensUsed:      resp.TokensUsed,
					LatencyMS:       resp.LatencyMS,
					Cached:          resp.Cached,
					SearchQuotaUsed: resp.SearchQuotaUsed,
				},
			},
		})
	case ModeTask:
		outputs, err := taskOutputs(resp.Outputs)
		if err != nil {
			return nil, err
		}
		return json.Marshal(taskEnvelope{
			TaskID: resp.TaskID,
			Data: taskData{
				Status:      "succeeded",
				Outputs:     outputs,
				ElapsedTime: resp.FinishedAt.Sub(resp.CreatedAt).Seconds(),
				CreatedAt:   resp.CreatedAt.Unix(),
				FinishedAt:  resp.FinishedAt.Unix(),
			},
		})
	default:
		return nil, fmt.Errorf("unknown envelope mode %q", mode)
	}
}

// taskOutputs applies the task convention's reshaping: tag lists collapse to
// a comma-joined "tag" string, and structured sources/images are re-encoded
// as JSON strings (the legacy consumer decodes them a second time).
func taskOutputs(outputs map[string]any) (map[string]any, error) {
	reshaped := make(map[string]any, len(outputs))
	for key, value := range outputs {
		switch key {
		case "tags":
			tags, ok := value.([]string)
			if !ok {
				reshaped[key] = value
				continue
			}
			reshaped["tag"] = strings.Join(tags, ",")
		case "sources", "images":
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s for task envelope: %w", key, err)
			}
			reshaped[key] = string(encoded)
		default:
			reshaped[key] = value
		}
	}
	return reshaped, nil
}
