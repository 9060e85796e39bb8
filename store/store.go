// Package store persists small pieces of SDK state (identity, session, test cells)
// in a pluggable key-value backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

// Backend is the string key-value contract every storage driver satisfies.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Store adds typed accessors for string, integer and long values on top of a Backend.
type Store struct {
	backend Backend
}

// New wraps backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// NewMemory returns a Store backed by process memory.
func NewMemory() *Store {
	return New(NewMemoryBackend())
}

// GetString returns the value for key or ErrNotFound.
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	return s.backend.Get(ctx, key)
}

// SetString stores value under key.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, key, value)
}

// GetInt returns the integer stored under key or ErrNotFound.
func (s *Store) GetInt(ctx context.Context, key string) (int, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse int %s: %w", key, err)
	}
	return v, nil
}

// SetInt stores an integer under key.
func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	return s.backend.Set(ctx, key, strconv.Itoa(value))
}

// GetLong returns the 64-bit integer stored under key or ErrNotFound.
func (s *Store) GetLong(ctx context.Context, key string) (int64, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse long %s: %w", key, err)
	}
	return v, nil
}

// SetLong stores a 64-bit integer under key.
func (s *Store) SetLong(ctx context.Context, key string, value int64) error {
	return s.backend.Set(ctx, key, strconv.FormatInt(value, 10))
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Clear wipes every key owned by the store.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
