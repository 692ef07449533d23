// Package docstore is a small document database addressed by
// (collection, document id), kept as JSON rows in SQLite.
//
// Writes are last-write-wins. There are no transactions spanning several
// calls, so read-then-write flows built on top of it can race.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"giveaway/internal/metrics"

	"github.com/google/logger"
	gonanoid "github.com/matoous/go-nanoid/v2"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a document store backed by a single SQLite connection.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{} // Key: collection
}

// Open opens (or creates) the database at path and prepares the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &Store{
		db:   db,
		subs: make(map[string]map[*Subscription]struct{}),
	}, nil
}

// Close closes every open subscription and then the database.
func (s *Store) Close() error {
	s.mu.Lock()
	var open []*Subscription
	for _, set := range s.subs {
		for sub := range set {
			open = append(open, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range open {
		sub.Close()
	}
	return s.db.Close()
}

// Get reads one document. It returns ErrNotFound when there is no such document.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		record("get", ErrNotFound)
		return Document{}, ErrNotFound
	}
	if err != nil {
		record("get", err)
		return Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	data, err := decodeData([]byte(raw))
	record("get", err)
	if err != nil {
		return Document{}, fmt.Errorf("corrupt document %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Data: data}, nil
}

// Set writes the whole document, replacing any previous content.
// Fields that are not in data are gone afterwards; nothing is merged.
func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(nonNil(data))
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO documents (collection, id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		collection, id, string(raw), time.Now())
	record("set", err)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}

	s.changed(collection)
	return nil
}

// Add stores a new document under a generated id and returns that id.
func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	raw, err := json.Marshal(nonNil(data))
	if err != nil {
		return "", fmt.Errorf("failed to encode new %s document: %w", collection, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)`,
		collection, id, string(raw), time.Now())
	record("add", err)
	if err != nil {
		return "", fmt.Errorf("failed to add %s document: %w", collection, err)
	}

	s.changed(collection)
	return id, nil
}

// Update sets the given top-level fields and leaves every other field as it is.
// It returns ErrNotFound when the document does not exist.
func (s *Store) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}

	expr := "data"
	args := make([]any, 0, len(patch)*2+3)
	for field, value := range patch {
		if !fieldPattern.MatchString(field) {
			return fmt.Errorf("invalid update field %q", field)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %s: %w", field, err)
		}
		expr = fmt.Sprintf("json_set(%s, ?, json(?))", expr)
		args = append(args, "$."+field, string(raw))
	}
	args = append(args, time.Now(), collection, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = `+expr+`, updated_at = ? WHERE collection = ? AND id = ?`, args...)
	if err != nil {
		record("update", err)
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		record("update", ErrNotFound)
		return ErrNotFound
	}
	record("update", nil)

	s.changed(collection)
	return nil
}

// Delete removes a document. It returns ErrNotFound when the document does not exist.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		record("delete", err)
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		record("delete", ErrNotFound)
		return ErrNotFound
	}
	record("delete", nil)

	s.changed(collection)
	return nil
}

// Query runs q once and returns the matching documents.
func (s *Store) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	stmt, args := q.sql()
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		record("query", err)
		return nil, fmt.Errorf("failed to query %s: %w", q.collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			record("query", err)
			return nil, fmt.Errorf("failed to scan %s document: %w", q.collection, err)
		}
		data, err := decodeData([]byte(raw))
		if err != nil {
			logger.Warningf("Skipping corrupt document %s/%s: %v", q.collection, id, err)
			continue
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	err = rows.Err()
	record("query", err)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s documents: %w", q.collection, err)
	}
	return docs, nil
}

// changed wakes every subscription on the collection.
func (s *Store) changed(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs[collection] {
		sub.wake()
	}
}

func nonNil(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return data
}

func record(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.StoreOperations.WithLabelValues(op, result).Inc()
}
