package pipeline

import (
	"context"
	"fmt"

	"github.com/davisjr/adaptive-rag/internal/models"
)

// Controller is one answering strategy. All implementations are safe for
// concurrent runs.
type Controller interface {
	Strategy() models.Strategy
	Run(ctx context.Context, question string, collectionIDs []string, limits Limits) (*models.RunResult, error)
}

// Selector routes a run to the controller registered for its strategy. The
// empty strategy resolves to adaptive.
type Selector struct {
	controllers map[models.Strategy]Controller
}

func NewSelector(controllers ...Controller) *Selector {
	s := &Selector{controllers: make(map[models.Strategy]Controller, len(controllers))}
	for _, c := range controllers {
		s.controllers[c.Strategy()] = c
	}
	return s
}

func (s *Selector) Get(strategy models.Strategy) (Controller, error) {
	if strategy == "" {
		strategy = models.StrategyAdaptive
	}
	c, ok := s.controllers[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	return c, nil
}

// Run resolves the strategy and executes the question on it.
func (s *Selector) Run(ctx context.Context, strategy models.Strategy, question string, collectionIDs []string, limits Limits) (*models.RunResult, error) {
	c, err := s.Get(strategy)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, question, collectionIDs, limits)
}
