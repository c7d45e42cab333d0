package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/davisjr/adaptive-rag/internal/models"
)

func TestSimpleRun_SinglePass(t *testing.T) {
	f := newFixture()
	c := NewSimpleController(f.store, f.collections, f.generator, testConfig(), nopLogger())

	result, err := c.Run(context.Background(), "how do I store embeddings?", []string{"stackoverflow"}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertNodes(t, result, []string{NodeRetrieve, NodeGenerate})
	if result.Answer != "use pgvector" {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.Metrics.GenerationAttempts != 1 || result.Metrics.TransformAttempts != 0 {
		t.Errorf("attempts = %d/%d, want 1/0", result.Metrics.GenerationAttempts, result.Metrics.TransformAttempts)
	}
	if result.Metrics.Disclaimer != "" {
		t.Errorf("unexpected disclaimer %q", result.Metrics.Disclaimer)
	}
	// No grading: every retrieved document reaches the generator.
	if f.generator.docCounts[0] != 1 {
		t.Errorf("generator saw %d documents, want 1", f.generator.docCounts[0])
	}
}

func TestSimpleRun_EmptyStoreCarriesDisclaimer(t *testing.T) {
	f := newFixture()
	f.store.docs = nil
	c := NewSimpleController(f.store, f.collections, f.generator, testConfig(), nopLogger())

	result, err := c.Run(context.Background(), "question", nil, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Metrics.Disclaimer != DisclaimerNoRelevantDocs {
		t.Errorf("disclaimer = %q", result.Metrics.Disclaimer)
	}
}

func TestSimpleRun_RejectsBadInput(t *testing.T) {
	f := newFixture()
	c := NewSimpleController(f.store, f.collections, f.generator, testConfig(), nopLogger())

	if _, err := c.Run(context.Background(), "  ", nil, Limits{}); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("err = %v, want ErrEmptyQuestion", err)
	}
	if _, err := c.Run(context.Background(), "q", []string{"nope"}, Limits{}); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("err = %v, want ErrUnknownCollection", err)
	}
}

func TestPureRun_NoRetrieval(t *testing.T) {
	f := newFixture()
	c := NewPureController(f.generator, testConfig(), nopLogger())

	result, err := c.Run(context.Background(), "what is a goroutine?", []string{"ignored"}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertNodes(t, result, []string{NodeGenerate})
	if len(f.store.queries) != 0 {
		t.Error("pure strategy must not touch the store")
	}
	if f.generator.docCounts[0] != 0 {
		t.Errorf("generator saw %d documents, want 0", f.generator.docCounts[0])
	}
	if len(result.DocumentsUsed) != 0 {
		t.Errorf("documents used = %d, want 0", len(result.DocumentsUsed))
	}
}

func TestPureRun_GenerationErrorFallsBack(t *testing.T) {
	f := newFixture()
	f.generator.err = errors.New("model unavailable")
	c := NewPureController(f.generator, testConfig(), nopLogger())

	result, err := c.Run(context.Background(), "question", nil, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != fallbackAnswer {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestControllers_ReportStrategies(t *testing.T) {
	f := newFixture()
	cases := []struct {
		controller Controller
		want       models.Strategy
	}{
		{f.controller(), models.StrategyAdaptive},
		{NewSimpleController(f.store, f.collections, f.generator, testConfig(), nopLogger()), models.StrategySimple},
		{NewPureController(f.generator, testConfig(), nopLogger()), models.StrategyPure},
	}
	for _, tc := range cases {
		if got := tc.controller.Strategy(); got != tc.want {
			t.Errorf("strategy = %s, want %s", got, tc.want)
		}
	}
}

func TestSimpleRun_PerRunTemperature(t *testing.T) {
	f := newFixture()
	c := NewSimpleController(f.store, f.collections, f.generator, testConfig(), nopLogger())

	if _, err := c.Run(context.Background(), "question", nil, Limits{Temperature: 0.4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.generator.temps[0] != 0.4 {
		t.Errorf("temperature = %v, want 0.4", f.generator.temps[0])
	}
}

func TestPureRun_PerRunTemperature(t *testing.T) {
	f := newFixture()
	c := NewPureController(f.generator, testConfig(), nopLogger())

	if _, err := c.Run(context.Background(), "question", nil, Limits{Temperature: 0.7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.generator.temps[0] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", f.generator.temps[0])
	}
}
