package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/config"
	"github.com/davisjr/adaptive-rag/internal/models"
)

// SimpleController is a single-pass retrieve-then-generate strategy with no
// grading and no retries, useful as a latency and quality baseline.
type SimpleController struct {
	store       DocumentStore
	collections CollectionChecker
	generator   Generator
	cfg         *config.PipelineConfig
	logger      zerolog.Logger
}

func NewSimpleController(
	store DocumentStore,
	collections CollectionChecker,
	generator Generator,
	cfg *config.PipelineConfig,
	logger *zerolog.Logger,
) *SimpleController {
	return &SimpleController{
		store:       store,
		collections: collections,
		generator:   generator,
		cfg:         cfg,
		logger:      logger.With().Str("component", "simple_controller").Logger(),
	}
}

func (c *SimpleController) Strategy() models.Strategy {
	return models.StrategySimple
}

func (c *SimpleController) Run(ctx context.Context, question string, collectionIDs []string, limits Limits) (*models.RunResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	for _, id := range collectionIDs {
		if _, err := c.collections.GetCollection(ctx, id); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, id)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	state := newRunState(question)

	started := time.Now()
	docs, err := c.store.Search(ctx, question, collectionIDs, c.cfg.Retrieval.K)
	if err != nil {
		c.logger.Error().Err(err).Str("run_id", runID).Msg("retrieval failed, continuing with no documents")
		docs = nil
	}
	state.documents = docs
	record(state, NodeRetrieve, started, fmt.Sprintf("%d documents", len(docs)))

	if len(state.documents) == 0 {
		state.disclaimer = DisclaimerNoRelevantDocs
		state.documents = []models.Document{}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	temperature := limits.Temperature
	if temperature <= 0 {
		temperature = c.cfg.Generate.Temperature
	}

	started = time.Now()
	state.generationAttempts = 1
	answer, err := c.generator.Generate(ctx, question, state.documents, temperature)
	if err != nil {
		c.logger.Error().Err(err).Str("run_id", runID).Msg("generation failed, returning fallback answer")
		answer = fallbackAnswer
		if state.disclaimer == "" {
			state.disclaimer = DisclaimerNotVerified
		}
		record(state, NodeGenerate, started, "failed")
	} else {
		record(state, NodeGenerate, started, "attempt 1")
	}
	state.answer = answer

	return buildResult(runID, state), nil
}
