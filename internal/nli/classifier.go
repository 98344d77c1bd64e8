package nli

import (
	"context"
	"errors"
	"fmt"
)

// Label is an NLI stance judgment of a hypothesis against a premise.
type Label string

const (
	Entailment    Label = "entailment"
	Contradiction Label = "contradiction"
	Neutral       Label = "neutral"
)

// Result is a classification outcome. Label is the top-scoring class;
// Scores keeps the full distribution for logging and thresholding.
type Result struct {
	Label  Label
	Scores map[Label]float64
}

// Classifier judges whether hypothesis is entailed by, contradicted by, or
// neutral to premise. Implementations handle their own resilience; callers
// see only success or ClassifierError.
type Classifier interface {
	Classify(ctx context.Context, premise, hypothesis string) (Result, error)
}

// ClassifierError reports a transport or protocol failure talking to the
// NLI backend.
type ClassifierError struct {
	Err error
}

func (e *ClassifierError) Error() string { return fmt.Sprintf("nli classifier: %v", e.Err) }
func (e *ClassifierError) Unwrap() error { return e.Err }

// IsClassifierError reports whether err is a ClassifierError.
func IsClassifierError(err error) bool {
	var ce *ClassifierError
	return errors.As(err, &ce)
}
