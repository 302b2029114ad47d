// Package ai wraps the external classification backend. The prompt contract
// constrains the model to answer with exactly one of the supplied category
// labels; callers still validate the returned label against the set.
package ai

import "context"

// Classifier asks the backend to pick one label from categories for the
// given document text.
type Classifier interface {
	Classify(ctx context.Context, text string, categories []string) (string, error)
}
