package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/models"
)

// Writer persists processed records in one of the supported output formats.
type Writer interface {
	Write(record OutputRecord) error
	Close() error
}

// NewWriter returns a writer for the requested format: "jsonl" streams one
// JSON object per record, "summary" aggregates and emits a single report on
// Close.
func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (Writer, error) {
	switch format {
	case "jsonl":
		return &jsonlWriter{encoder: json.NewEncoder(out)}, nil
	case "summary":
		return &summaryWriter{out: out, strategies: map[models.Strategy]int{}, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

type jsonlWriter struct {
	encoder *json.Encoder
}

func (w *jsonlWriter) Write(record OutputRecord) error {
	return w.encoder.Encode(record)
}

func (w *jsonlWriter) Close() error { return nil }

// Summary is the aggregate report the summary format emits.
type Summary struct {
	Total                  int                     `json:"total"`
	Succeeded              int                     `json:"succeeded"`
	Failed                 int                     `json:"failed"`
	Degraded               int                     `json:"degraded"`
	TotalGenerateAttempts  int                     `json:"total_generation_attempts"`
	TotalTransformAttempts int                     `json:"total_transform_attempts"`
	ByStrategy             map[models.Strategy]int `json:"by_strategy"`
}

type summaryWriter struct {
	out        io.Writer
	summary    Summary
	strategies map[models.Strategy]int
	logger     *zerolog.Logger
}

func (w *summaryWriter) Write(record OutputRecord) error {
	w.summary.Total++
	if record.Error != "" {
		w.summary.Failed++
		return nil
	}
	w.summary.Succeeded++
	w.strategies[record.Strategy]++
	if record.Result != nil {
		if record.Result.Metrics.Disclaimer != "" {
			w.summary.Degraded++
		}
		w.summary.TotalGenerateAttempts += record.Result.Metrics.GenerationAttempts
		w.summary.TotalTransformAttempts += record.Result.Metrics.TransformAttempts
	}
	return nil
}

func (w *summaryWriter) Close() error {
	w.summary.ByStrategy = w.strategies
	encoder := json.NewEncoder(w.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(w.summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	w.logger.Info().
		Int("total", w.summary.Total).
		Int("succeeded", w.summary.Succeeded).
		Int("failed", w.summary.Failed).
		Int("degraded", w.summary.Degraded).
		Msg("Summary written")
	return nil
}
