package api

import (
	"github.com/davisjr/adaptive-rag/internal/models"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Question              string          `json:"question"`
	Collections           []string        `json:"collections,omitempty"`
	Strategy              models.Strategy `json:"strategy,omitempty"`
	MaxGenerationAttempts int             `json:"max_generation_attempts,omitempty"`
	MaxTransformAttempts  int             `json:"max_transform_attempts,omitempty"`
	Temperature           float64         `json:"temperature,omitempty"`
}

type CollectionsResponse struct {
	Collections []models.Collection `json:"collections"`
}
