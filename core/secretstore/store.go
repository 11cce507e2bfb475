package secretstore

import (
	"context"
	"errors"
	"time"
)

// Metadata describes a stored secret without its value.
type Metadata struct {
	Name string

	// CreatedAt is when the secret was first created.
	CreatedAt time.Time

	// VersionCreatedAt is when the current value was written.
	// Every Create or Update moves it forward.
	VersionCreatedAt time.Time
}

// Store is the secret store contract.
type Store interface {
	// GetMetadata returns ErrNotFound when the secret does not exist.
	GetMetadata(ctx context.Context, name string) (*Metadata, error)

	// GetValue returns the current value. ErrNotFound when absent.
	GetValue(ctx context.Context, name string) (string, error)

	// Create fails with ErrAlreadyExists when the name is taken.
	Create(ctx context.Context, name, value string) error

	// Update replaces the value of an existing secret. ErrNotFound when absent.
	Update(ctx context.Context, name, value string) error
}

// Writer is the subset of Store used by Put.
type Writer interface {
	Create(ctx context.Context, name, value string) error
	Update(ctx context.Context, name, value string) error
}

// Put writes value under name, creating the secret if needed.
// A Create that loses a race with a concurrent writer is retried as an Update.
func Put(ctx context.Context, w Writer, name, value string) error {
	if name == "" {
		return ErrInvalidName
	}

	err := w.Update(ctx, name, value)
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	err = w.Create(ctx, name, value)
	if errors.Is(err, ErrAlreadyExists) {
		return w.Update(ctx, name, value)
	}
	return err
}
