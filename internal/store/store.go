// Package store persists the whole todo collection as one JSON blob
// under a single key of a key-value store.
//
// Every save overwrites the blob; there is no incremental persistence.
// Every record read back goes through model.Normalize.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baiirun/lanes/internal/model"
)

// DefaultKey is the key the collection is stored under.
const DefaultKey = "todos"

// KV is a byte-oriented key-value store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrMalformedState is matched by every MalformedStateError.
var ErrMalformedState = errors.New("malformed persisted state")

// MalformedStateError reports a stored blob that exists but is not a
// JSON array.
type MalformedStateError struct {
	Key string
	Err error
}

func (e *MalformedStateError) Error() string {
	return fmt.Sprintf("malformed persisted state under key %q: %v", e.Key, e.Err)
}

func (e *MalformedStateError) Unwrap() error {
	return e.Err
}

func (e *MalformedStateError) Is(target error) bool {
	return target == ErrMalformedState
}

// Store loads and saves the todo collection.
type Store struct {
	kv  KV
	key string
}

// New returns a store that keeps the collection under key. An empty key
// selects DefaultKey.
func New(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Key returns the key the collection is stored under.
func (s *Store) Key() string {
	return s.key
}

// Load reads the collection. A missing or empty blob is an empty
// collection; anything that is not a JSON array is a
// *MalformedStateError and nothing is recovered from it.
func (s *Store) Load(ctx context.Context) ([]model.Todo, error) {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.key, err)
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return []model.Todo{}, nil
	}

	todos, err := Decode(data)
	if err != nil {
		return nil, &MalformedStateError{Key: s.key, Err: err}
	}
	return todos, nil
}

// Save serializes the full collection and overwrites the stored blob.
func (s *Store) Save(ctx context.Context, todos []model.Todo) error {
	data, err := Encode(todos)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write %q: %w", s.key, err)
	}
	return nil
}

// Reset overwrites the stored blob with an empty collection. It is the
// explicit way out of a malformed state; Load never does this itself.
func (s *Store) Reset(ctx context.Context) error {
	return s.Save(ctx, nil)
}

// Encode serializes a collection. A nil collection encodes as [].
func Encode(todos []model.Todo) ([]byte, error) {
	if todos == nil {
		todos = []model.Todo{}
	}
	data, err := json.Marshal(todos)
	if err != nil {
		return nil, fmt.Errorf("failed to encode todos: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of records and normalizes each one, using
// its index as the fallback position. Elements that are not objects,
// null included, are normalized from an empty record and so load as a
// blank todo with a fresh id instead of failing the whole load.
func Decode(data []byte) ([]model.Todo, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected a JSON array, got null")
	}

	todos := make([]model.Todo, 0, len(raw))
	for i, msg := range raw {
		var rec model.Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			rec = model.Record{}
		}
		todos = append(todos, model.Normalize(rec, i))
	}
	return todos, nil
}
