package ai

import (
	"context"
	"errors"
	"strings"
)

// Attempt is one tier of a fallback chain.
type Attempt func(ctx context.Context) (string, error)

var errEmptyOutput = errors.New("empty output")

// FirstSuccess runs attempts in order and returns the first non-empty text
// together with the number of attempts made. When every tier fails the joined
// errors of all tiers are returned.
func FirstSuccess(ctx context.Context, attempts ...Attempt) (string, int, error) {
	var errs []error
	for i, attempt := range attempts {
		text, err := attempt(ctx)
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" {
				return text, i + 1, nil
			}
			err = errEmptyOutput
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return "", 0, errors.New("no attempts configured")
	}

	return "", len(attempts), errors.Join(errs...)
}
