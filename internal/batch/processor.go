package batch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/models"
	"github.com/davisjr/adaptive-rag/internal/pipeline"
)

// Runner executes one query request end to end.
type Runner interface {
	Run(ctx context.Context, strategy models.Strategy, question string, collectionIDs []string, limits pipeline.Limits) (*models.RunResult, error)
}

// Processor fans records out to a fixed pool of workers. Runs already in
// flight finish after cancellation; queued records are dropped.
type Processor struct {
	runner  Runner
	workers int
	logger  *zerolog.Logger
}

func NewProcessor(runner Runner, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{runner: runner, workers: workers, logger: logger}
}

// Process consumes records and emits one OutputRecord per input, in
// completion order. The output channel closes once all workers drain.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan OutputRecord {
	jobs := make(chan InputRecord)
	out := make(chan OutputRecord)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobs {
				out <- p.process(ctx, record)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, record := range records {
			select {
			case jobs <- record:
			case <-ctx.Done():
				p.logger.Warn().Msg("Processing cancelled, dropping queued records")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (p *Processor) process(ctx context.Context, record InputRecord) OutputRecord {
	output := OutputRecord{
		ID:       record.Request.ID,
		Question: record.Request.Question,
		Strategy: record.Request.Strategy,
	}
	if output.Strategy == "" {
		output.Strategy = models.StrategyAdaptive
	}
	if record.Error != nil {
		output.Error = record.Error.Error()
		return output
	}

	limits := pipeline.Limits{
		MaxGenerationAttempts: record.Request.MaxGenerationAttempts,
		MaxTransformAttempts:  record.Request.MaxTransformAttempts,
		Temperature:           record.Request.Temperature,
	}
	result, err := p.runner.Run(ctx, record.Request.Strategy, record.Request.Question, record.Request.Collections, limits)
	if err != nil {
		p.logger.Error().Err(err).Str("id", record.Request.ID).Int("line", record.LineNumber).Msg("Run failed")
		output.Error = err.Error()
		return output
	}
	output.Result = result
	return output
}
