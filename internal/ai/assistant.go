package ai

import (
	"context"
	"errors"
	"fmt"
)

// Evaluation is the rubric result for a single candidate answer.
type Evaluation struct {
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	IdealAnswer string `json:"ideal_answer"`
}

// GenerateOptions tunes a single generation call. A nil Temperature keeps the
// backend default.
type GenerateOptions struct {
	Temperature *float32
}

// WithTemperature returns options overriding the sampling temperature.
func WithTemperature(t float32) GenerateOptions {
	return GenerateOptions{Temperature: &t}
}

// Generator is the generative-text backend used for both question authoring
// and answer evaluation.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerationError reports a failed backend call: transport, auth, quota,
// timeout or an empty response.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err is or wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
