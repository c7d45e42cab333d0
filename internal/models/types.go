package models

import (
	"time"
)

type SourceType string

const (
	SourceStackOverflow SourceType = "stackoverflow"
	SourcePDF           SourceType = "pdf"
)

type Strategy string

const (
	StrategyAdaptive Strategy = "adaptive_rag"
	StrategySimple   Strategy = "simple_rag"
	StrategyPure     Strategy = "pure_llm"
)

// Collection is a named, independently searchable corpus.
type Collection struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Source     SourceType `json:"source"`
	ChunkCount int        `json:"chunk_count"`
}

// Document is one retrieved chunk with provenance. Immutable once retrieved
// within a run.
type Document struct {
	ID           string            `json:"id"`
	Source       SourceType        `json:"source"`
	Title        string            `json:"title"`
	Text         string            `json:"text"`
	Score        *float64          `json:"score,omitempty"`
	CollectionID string            `json:"collection_id"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// TraceEntry records one executed pipeline node, in execution order.
type TraceEntry struct {
	Node     string        `json:"node"`
	Duration time.Duration `json:"duration_ns"`
	Outcome  string        `json:"outcome,omitempty"`
}

type IterationMetrics struct {
	GenerationAttempts   int    `json:"generation_attempts"`
	TransformAttempts    int    `json:"transform_attempts"`
	MaxIterationsReached bool   `json:"max_iterations_reached"`
	Disclaimer           string `json:"disclaimer,omitempty"`
}

// RunResult is what the pipeline returns to its caller once a run reaches
// the terminal state.
type RunResult struct {
	RunID             string                   `json:"run_id"`
	Answer            string                   `json:"answer"`
	Trace             []TraceEntry             `json:"trace"`
	NodeTimings       map[string]time.Duration `json:"node_timings"`
	DocumentsUsed     []Document               `json:"documents_used"`
	RewrittenQuestion string                   `json:"rewritten_question,omitempty"`
	Metrics           IterationMetrics         `json:"iteration_metrics"`
	CreatedAt         time.Time                `json:"created_at"`
}
