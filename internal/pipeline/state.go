package pipeline

import (
	"context"

	"github.com/davisjr/adaptive-rag/internal/models"
)

// Node names recorded in the execution trace, one per state-machine entry.
const (
	NodeRetrieve        = "retrieve"
	NodeGradeDocuments  = "grade_documents"
	NodeGenerate        = "generate"
	NodeGradeGeneration = "grade_generation"
	NodeTransformQuery  = "transform_query"
)

// Fixed advisory strings attached to degraded-quality answers. The
// disclaimer is the only channel communicating reduced confidence; degraded
// runs are never surfaced as errors.
const (
	DisclaimerNoRelevantDocs = "This answer is based on general knowledge, not on documents from the knowledge base."
	DisclaimerNotVerified    = "This answer could not be fully verified against the knowledge base."
)

// Limits carries the per-run knobs of the retry loop. Zero values fall back
// to the controller's configured defaults. Temperature is the sampling
// temperature of the first generation attempt; retries ramp up from it.
type Limits struct {
	MaxGenerationAttempts int
	MaxTransformAttempts  int
	Temperature           float64
}

// DocumentStore is the semantic search capability the controllers consume.
type DocumentStore interface {
	Search(ctx context.Context, query string, collectionIDs []string, k int) ([]models.Document, error)
}

// CollectionChecker validates collection references before a run starts.
type CollectionChecker interface {
	GetCollection(ctx context.Context, collectionID string) (models.Collection, error)
}

type RelevanceGrader interface {
	Grade(ctx context.Context, question string, document models.Document) bool
}

type HallucinationGrader interface {
	Grade(ctx context.Context, answer string, documents []models.Document) bool
}

type AnswerGrader interface {
	Grade(ctx context.Context, question string, answer string) bool
}

type Generator interface {
	Generate(ctx context.Context, question string, documents []models.Document, temperature float64) (string, error)
}

type Rewriter interface {
	Rewrite(ctx context.Context, question string) (string, error)
}

// runState is one run's working memory. It is owned exclusively by the run,
// mutated only by the controller's step functions, and discarded at the
// terminal state.
type runState struct {
	originalQuestion string
	activeQuestion   string
	documents        []models.Document
	answer           string

	generationAttempts int
	transformAttempts  int

	trace                []models.TraceEntry
	disclaimer           string
	maxIterationsReached bool
	noDocsFallback       bool
}

func newRunState(question string) *runState {
	return &runState{
		originalQuestion: question,
		activeQuestion:   question,
		documents:        []models.Document{},
	}
}

func (s *runState) rewrittenQuestion() string {
	if s.activeQuestion == s.originalQuestion {
		return ""
	}
	return s.activeQuestion
}
