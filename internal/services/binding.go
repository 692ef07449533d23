package services

import (
	"context"
	"errors"
	"fmt"

	"giveaway/internal/docstore"
	"giveaway/internal/notify"

	"github.com/google/logger"
)

// Binding ties one fixed document to a Go value with defaults.
//
// Save replaces the stored document with the given value; it never merges.
// There is no version check, so two admins saving at once end with whichever
// write landed last.
type Binding[T any] struct {
	store      DocumentStore
	collection string
	id         string
	defaults   T
	label      string
	sink       notify.Sink
}

// NewBinding creates a binding for collection/id. label names the document in toasts.
func NewBinding[T any](store DocumentStore, collection, id string, defaults T, label string, sink notify.Sink) *Binding[T] {
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &Binding[T]{
		store:      store,
		collection: collection,
		id:         id,
		defaults:   defaults,
		label:      label,
		sink:       sink,
	}
}

// Defaults returns the value used when the document does not exist.
func (b *Binding[T]) Defaults() T {
	return b.defaults
}

// Load reads the document. Only a missing document yields the defaults; a
// stored document is returned exactly as saved.
func (b *Binding[T]) Load(ctx context.Context) (T, error) {
	doc, err := b.store.Get(ctx, b.collection, b.id)
	if errors.Is(err, docstore.ErrNotFound) {
		return b.defaults, nil
	}
	if err != nil {
		logger.Errorf("Failed to load %s/%s: %v", b.collection, b.id, err)
		b.sink.Notify(notify.Fail(fmt.Sprintf("Could not load %s", b.label)))
		return b.defaults, err
	}

	var value T
	if err := doc.DataTo(&value); err != nil {
		logger.Errorf("Failed to decode %s/%s: %v", b.collection, b.id, err)
		return b.defaults, err
	}
	return value, nil
}

// Put overwrites the document without reporting to the sink.
func (b *Binding[T]) Put(ctx context.Context, value T) error {
	data, err := docstore.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", b.label, err)
	}
	return b.store.Set(ctx, b.collection, b.id, data)
}

// Save overwrites the document and reports the outcome.
func (b *Binding[T]) Save(ctx context.Context, value T) error {
	if err := b.Put(ctx, value); err != nil {
		logger.Errorf("Failed to save %s/%s: %v", b.collection, b.id, err)
		b.sink.Notify(notify.Fail(fmt.Sprintf("Could not save %s", b.label)))
		return err
	}
	b.sink.Notify(notify.Ok(fmt.Sprintf("Saved %s", b.label)))
	return nil
}
