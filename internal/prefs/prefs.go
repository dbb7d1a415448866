package prefs

import (
	"context"
	"errors"
)

// Namespace is the key space the display's fields live in.
const Namespace = "zen_disp"

// ErrInvalidKey is returned for an empty key.
var ErrInvalidKey = errors.New("prefs: key cannot be empty")

// Store is a small persistent key-value store.
//
// Put and Remove are atomic across all keys they touch, which is what lets
// the identity record be written and erased as a unit.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
}

func validateKeys[V any](values map[string]V) error {
	for k := range values {
		if k == "" {
			return ErrInvalidKey
		}
	}
	return nil
}
