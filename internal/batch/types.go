package batch

import (
	"github.com/davisjr/adaptive-rag/internal/models"
)

// QueryRequest is one line of a JSONL batch input file.
type QueryRequest struct {
	ID                    string          `json:"id"`
	Question              string          `json:"question"`
	Collections           []string        `json:"collections,omitempty"`
	Strategy              models.Strategy `json:"strategy,omitempty"`
	MaxGenerationAttempts int             `json:"max_generation_attempts,omitempty"`
	MaxTransformAttempts  int             `json:"max_transform_attempts,omitempty"`
	Temperature           float64         `json:"temperature,omitempty"`
}

// InputRecord pairs a parsed request with its source line. Error is set when
// the line could not be parsed or failed validation; such records are carried
// through so callers can report them against the original file.
type InputRecord struct {
	Request    QueryRequest
	LineNumber int
	Error      error
}

// OutputRecord is one processed request, written as a JSONL line.
type OutputRecord struct {
	ID       string            `json:"id"`
	Question string            `json:"question"`
	Strategy models.Strategy   `json:"strategy"`
	Result   *models.RunResult `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}
