package pipeline

import "errors"

var (
	// ErrEmptyQuestion is returned when the question is empty or whitespace.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrUnknownCollection is returned when a requested collection does not
	// exist in the store. Runs are rejected before any node executes.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrUnknownStrategy is returned by the selector for strategies no
	// controller is registered under.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
