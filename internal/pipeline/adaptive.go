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

// fallbackAnswer is returned when generation fails after all leaf-level
// retries. Runs degrade instead of erroring.
const fallbackAnswer = "I was unable to produce an answer to this question."

// AdaptiveController drives the retrieve / grade / generate / verify loop.
// Each Run owns its state; a single controller serves concurrent runs.
type AdaptiveController struct {
	store         DocumentStore
	collections   CollectionChecker
	relevance     RelevanceGrader
	hallucination HallucinationGrader
	answer        AnswerGrader
	generator     Generator
	rewriter      Rewriter
	cfg           *config.PipelineConfig
	logger        zerolog.Logger
}

func NewAdaptiveController(
	store DocumentStore,
	collections CollectionChecker,
	relevance RelevanceGrader,
	hallucination HallucinationGrader,
	answer AnswerGrader,
	generator Generator,
	rewriter Rewriter,
	cfg *config.PipelineConfig,
	logger *zerolog.Logger,
) *AdaptiveController {
	return &AdaptiveController{
		store:         store,
		collections:   collections,
		relevance:     relevance,
		hallucination: hallucination,
		answer:        answer,
		generator:     generator,
		rewriter:      rewriter,
		cfg:           cfg,
		logger:        logger.With().Str("component", "adaptive_controller").Logger(),
	}
}

func (c *AdaptiveController) Strategy() models.Strategy {
	return models.StrategyAdaptive
}

// Run executes one question through the adaptive loop. limits fields left at
// zero fall back to configured defaults. The returned error is non-nil only
// for rejected input or cancellation; degraded runs return a result whose
// metrics carry a disclaimer.
func (c *AdaptiveController) Run(ctx context.Context, question string, collectionIDs []string, limits Limits) (*models.RunResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if err := c.validateCollections(ctx, collectionIDs); err != nil {
		return nil, err
	}

	maxGen := limits.MaxGenerationAttempts
	if maxGen <= 0 {
		maxGen = c.cfg.Limits.MaxGenerationAttempts
	}
	maxTransform := limits.MaxTransformAttempts
	if maxTransform <= 0 {
		maxTransform = c.cfg.Limits.MaxTransformAttempts
	}
	baseTemperature := limits.Temperature
	if baseTemperature <= 0 {
		baseTemperature = c.cfg.Generate.Temperature
	}

	runID := uuid.NewString()
	logger := c.logger.With().Str("run_id", runID).Logger()
	logger.Info().
		Int("max_generation_attempts", maxGen).
		Int("max_transform_attempts", maxTransform).
		Strs("collections", collectionIDs).
		Msg("starting adaptive run")

	state := newRunState(question)
	node := NodeRetrieve

	for node != "" {
		var next string
		var err error

		switch node {
		case NodeRetrieve:
			// Retrieval and generation are the expensive entry points;
			// cancellation is honored before each.
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			next = c.stepRetrieve(ctx, state, collectionIDs, logger)
		case NodeGradeDocuments:
			next = c.stepGradeDocuments(ctx, state, maxGen, maxTransform, logger)
		case NodeTransformQuery:
			next = c.stepTransformQuery(ctx, state, maxTransform, logger)
		case NodeGenerate:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			next = c.stepGenerate(ctx, state, baseTemperature, logger)
		case NodeGradeGeneration:
			next = c.stepGradeGeneration(ctx, state, maxGen, maxTransform, logger)
		default:
			err = fmt.Errorf("pipeline reached unknown node %q", node)
		}
		if err != nil {
			return nil, err
		}
		node = next
	}

	result := buildResult(runID, state)
	logger.Info().
		Int("generation_attempts", state.generationAttempts).
		Int("transform_attempts", state.transformAttempts).
		Bool("max_iterations_reached", state.maxIterationsReached).
		Int("documents_used", len(state.documents)).
		Msg("adaptive run finished")
	return result, nil
}

func (c *AdaptiveController) validateCollections(ctx context.Context, collectionIDs []string) error {
	for _, id := range collectionIDs {
		if _, err := c.collections.GetCollection(ctx, id); err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownCollection, id)
		}
	}
	return nil
}

func (c *AdaptiveController) stepRetrieve(ctx context.Context, state *runState, collectionIDs []string, logger zerolog.Logger) string {
	started := time.Now()
	docs, err := c.store.Search(ctx, state.activeQuestion, collectionIDs, c.cfg.Retrieval.K)
	if err != nil {
		// A failed search degrades to an empty result set; the grading
		// node decides whether a fallback answer is still possible.
		logger.Error().Err(err).Msg("retrieval failed, continuing with no documents")
		docs = nil
	}
	state.documents = docs
	record(state, NodeRetrieve, started, fmt.Sprintf("%d documents", len(docs)))
	return NodeGradeDocuments
}

func (c *AdaptiveController) stepGradeDocuments(ctx context.Context, state *runState, maxGen, maxTransform int, logger zerolog.Logger) string {
	started := time.Now()
	relevant := make([]models.Document, 0, len(state.documents))
	for _, doc := range state.documents {
		if c.relevance.Grade(ctx, state.activeQuestion, doc) {
			relevant = append(relevant, doc)
		}
	}
	logger.Debug().
		Int("retrieved", len(state.documents)).
		Int("relevant", len(relevant)).
		Msg("graded documents")
	state.documents = relevant

	if len(relevant) > 0 {
		record(state, NodeGradeDocuments, started, fmt.Sprintf("%d relevant", len(relevant)))
		return NodeGenerate
	}
	if state.transformAttempts < maxTransform && state.generationAttempts < maxGen {
		record(state, NodeGradeDocuments, started, "no relevant documents, transforming query")
		return NodeTransformQuery
	}

	// Budget exhausted with nothing relevant: answer from model knowledge
	// alone and say so.
	logger.Warn().Msg("transform budget exhausted without relevant documents, falling back to pure generation")
	state.disclaimer = DisclaimerNoRelevantDocs
	state.maxIterationsReached = true
	state.noDocsFallback = true
	state.documents = []models.Document{}
	record(state, NodeGradeDocuments, started, "no relevant documents, budget exhausted")
	return NodeGenerate
}

func (c *AdaptiveController) stepTransformQuery(ctx context.Context, state *runState, maxTransform int, logger zerolog.Logger) string {
	started := time.Now()
	state.transformAttempts++

	rewritten, err := c.rewriter.Rewrite(ctx, state.activeQuestion)
	if err != nil {
		logger.Error().Err(err).Msg("query rewrite failed, keeping current question")
		record(state, NodeTransformQuery, started, "rewrite failed")
		return NodeRetrieve
	}
	if rewritten == state.activeQuestion {
		// The rewriter could not move the query. Re-running retrieval with
		// the identical question cannot change the outcome, so the
		// remaining transform budget is spent here.
		logger.Warn().Msg("rewriter returned the question unchanged, spending remaining transform budget")
		state.transformAttempts = maxTransform
		record(state, NodeTransformQuery, started, "unchanged")
		return NodeRetrieve
	}

	logger.Debug().Str("rewritten_question", rewritten).Msg("transformed query")
	state.activeQuestion = rewritten
	record(state, NodeTransformQuery, started, "rewritten")
	return NodeRetrieve
}

func (c *AdaptiveController) stepGenerate(ctx context.Context, state *runState, baseTemperature float64, logger zerolog.Logger) string {
	started := time.Now()
	state.generationAttempts++

	// Retries run hotter so the model does not reproduce the rejected
	// answer verbatim. Generation always sees the user's original wording.
	temperature := baseTemperature +
		float64(state.generationAttempts-1)*c.cfg.Generate.RetryTemperatureIncrement
	if temperature > 1.0 {
		temperature = 1.0
	}

	answer, err := c.generator.Generate(ctx, state.originalQuestion, state.documents, temperature)
	if err != nil {
		logger.Error().Err(err).Msg("generation failed, returning fallback answer")
		state.answer = fallbackAnswer
		if state.disclaimer == "" {
			state.disclaimer = DisclaimerNotVerified
		}
		record(state, NodeGenerate, started, "failed")
		return ""
	}
	state.answer = answer
	record(state, NodeGenerate, started, fmt.Sprintf("attempt %d", state.generationAttempts))

	if state.noDocsFallback {
		// Nothing to verify against; the disclaimer already marks the
		// answer as unsupported by the knowledge base.
		return ""
	}
	return NodeGradeGeneration
}

func (c *AdaptiveController) stepGradeGeneration(ctx context.Context, state *runState, maxGen, maxTransform int, logger zerolog.Logger) string {
	started := time.Now()

	grounded := c.hallucination.Grade(ctx, state.answer, state.documents)
	if !grounded {
		if state.generationAttempts < maxGen {
			logger.Debug().Msg("answer not grounded in documents, regenerating")
			record(state, NodeGradeGeneration, started, "not supported")
			return NodeGenerate
		}
		logger.Warn().Msg("generation budget exhausted with ungrounded answer")
		state.disclaimer = DisclaimerNotVerified
		state.maxIterationsReached = true
		record(state, NodeGradeGeneration, started, "not supported, budget exhausted")
		return ""
	}

	useful := c.answer.Grade(ctx, state.originalQuestion, state.answer)
	if useful {
		record(state, NodeGradeGeneration, started, "useful")
		return ""
	}
	if state.transformAttempts < maxTransform && state.generationAttempts < maxGen {
		logger.Debug().Msg("answer does not address the question, transforming query")
		record(state, NodeGradeGeneration, started, "not useful")
		return NodeTransformQuery
	}
	logger.Warn().Msg("iteration budget exhausted with unhelpful answer")
	state.disclaimer = DisclaimerNotVerified
	state.maxIterationsReached = true
	record(state, NodeGradeGeneration, started, "not useful, budget exhausted")
	return ""
}

func record(state *runState, node string, started time.Time, outcome string) {
	state.trace = append(state.trace, models.TraceEntry{
		Node:     node,
		Duration: time.Since(started),
		Outcome:  outcome,
	})
}

func buildResult(runID string, state *runState) *models.RunResult {
	timings := make(map[string]time.Duration, len(state.trace))
	for _, entry := range state.trace {
		timings[entry.Node] += entry.Duration
	}
	return &models.RunResult{
		RunID:             runID,
		Answer:            state.answer,
		Trace:             state.trace,
		NodeTimings:       timings,
		DocumentsUsed:     state.documents,
		RewrittenQuestion: state.rewrittenQuestion(),
		Metrics: models.IterationMetrics{
			GenerationAttempts:   state.generationAttempts,
			TransformAttempts:    state.transformAttempts,
			MaxIterationsReached: state.maxIterationsReached,
			Disclaimer:           state.disclaimer,
		},
		CreatedAt: time.Now().UTC(),
	}
}
