package services

import (
	"context"
	"errors"

	"giveaway/internal/docstore"
)

// DocumentStore is the subset of the document store the services use.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error)
	Subscribe(q docstore.Query, fn func([]docstore.Document)) (*docstore.Subscription, error)
}

var (
	// ErrNotConfirmed is returned when a destructive action was declined.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrInvalidStatus is returned for an unknown participant status.
	ErrInvalidStatus = errors.New("invalid participant status")
	// ErrInvalidEntry is returned when required entry fields are missing.
	ErrInvalidEntry = errors.New("invalid entry")
)
