// Package inference turns two fighter names into a prediction: profile lookup,
// feature vector, win probability and the per-feature explanation.
// It knows nothing about queues or caches.
package inference

import "errors"

var (
	// ErrFighterNotFound means a name matched no profile, or matched several by substring.
	ErrFighterNotFound = errors.New("fighter not found")

	ErrInvalidModel = errors.New("invalid model")
)
