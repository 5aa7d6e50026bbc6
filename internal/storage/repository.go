package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Keys of the persisted client state.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyTheme = "theme"
)

// Repository is a small key/value store for state that must survive restarts.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
