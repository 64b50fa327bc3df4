// Package matchup derives the cache and lock keys shared by the API and the worker.
// Both processes must agree on a key without talking to each other, so this is the
// only place the derivation lives.
package matchup

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	resultPrefix = "predict:"
	lockSuffix   = ":lock"
	separator    = "__vs__"
)

// Key identifies an ordered pair of fighters. Red corner first.
type Key struct {
	hash string
}

// Normalize lower-cases and trims a fighter name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Derive builds the key for red vs blue. Swapping the corners yields a different key
// because the model is not symmetric in its inputs.
func Derive(red, blue string) Key {
	sum := xxhash.Sum64String(Normalize(red) + separator + Normalize(blue))
	return Key{hash: fmt.Sprintf("%016x", sum)}
}

// Hash returns the fixed-width hex digest.
func (k Key) Hash() string { return k.hash }

// Result is the cache entry holding the serialized prediction.
func (k Key) Result() string { return resultPrefix + k.hash }

// Lock is the in-flight marker for the same matchup.
func (k Key) Lock() string { return resultPrefix + k.hash + lockSuffix }

func (k Key) String() string { return k.Result() }
