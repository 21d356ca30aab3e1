// Package kv is the persistence contract of the POS: named values read and
// written whole, with an atomic multi-key batch.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not_found")

// Op is a single write inside a Batch. Delete removes Key and ignores Value.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Batch applies all ops or none of them.
	Batch(ctx context.Context, ops []Op) error
}
