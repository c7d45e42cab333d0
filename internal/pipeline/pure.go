package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/config"
	"github.com/davisjr/adaptive-rag/internal/models"
)

// PureController answers from model knowledge only. No retrieval happens and
// collection arguments are ignored; the run serves as the no-RAG baseline.
type PureController struct {
	generator Generator
	cfg       *config.PipelineConfig
	logger    zerolog.Logger
}

func NewPureController(generator Generator, cfg *config.PipelineConfig, logger *zerolog.Logger) *PureController {
	return &PureController{
		generator: generator,
		cfg:       cfg,
		logger:    logger.With().Str("component", "pure_controller").Logger(),
	}
}

func (c *PureController) Strategy() models.Strategy {
	return models.StrategyPure
}

func (c *PureController) Run(ctx context.Context, question string, _ []string, limits Limits) (*models.RunResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	state := newRunState(question)

	temperature := limits.Temperature
	if temperature <= 0 {
		temperature = c.cfg.Generate.Temperature
	}

	started := time.Now()
	state.generationAttempts = 1
	answer, err := c.generator.Generate(ctx, question, nil, temperature)
	if err != nil {
		c.logger.Error().Err(err).Str("run_id", runID).Msg("generation failed, returning fallback answer")
		answer = fallbackAnswer
		record(state, NodeGenerate, started, "failed")
	} else {
		record(state, NodeGenerate, started, "attempt 1")
	}
	state.answer = answer

	return buildResult(runID, state), nil
}
