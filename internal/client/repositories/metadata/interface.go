// Package metadata stores the CLI session as key/value pairs in SQLite.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken = "token"
	KeyEmail = "email"
)

type Repository interface {
	// Get returns the value stored under key. ok is false when nothing is.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
