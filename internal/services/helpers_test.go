package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"giveaway/internal/docstore"
)

func newTestStore(t *testing.T) *docstore.Store {
	t.Helper()

	store, err := docstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var errUnavailable = errors.New("store unavailable")

// brokenStore fails the operations whose flag is set and delegates the rest.
type brokenStore struct {
	DocumentStore
	failQuery  bool
	failUpdate bool
	failSet    bool
	updates    int
}

func (b *brokenStore) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if b.failQuery {
		return nil, errUnavailable
	}
	return b.DocumentStore.Query(ctx, q)
}

func (b *brokenStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	b.updates++
	if b.failUpdate {
		return errUnavailable
	}
	return b.DocumentStore.Update(ctx, collection, id, patch)
}

func (b *brokenStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if b.failSet {
		return errUnavailable
	}
	return b.DocumentStore.Set(ctx, collection, id, data)
}
