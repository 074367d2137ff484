package domain

import (
	"encoding/json"
	"time"
)

// SearchLog is the immutable audit record persisted after a pipeline run.
type SearchLog struct {
	ID               string          `json:"id"`
	SearchParams     json.RawMessage `json:"search_params"`
	Recommendations  json.RawMessage `json:"recommendations"`
	ModelVersion     string          `json:"model_version"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	CreatedAt        time.Time       `json:"created_at"`
}
