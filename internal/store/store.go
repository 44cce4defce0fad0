package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	KindBolt   = "bolt"
	KindSQLite = "sqlite"
)

var (
	// ErrInvalidKey is returned for empty keys or keys with empty segments
	ErrInvalidKey = errors.New("invalid settings key")

	// ErrUnknownKind is returned by Open for an unsupported backend
	ErrUnknownKind = errors.New("unknown settings backend")
)

// Store is a persistent key-value settings store addressed by dotted paths.
// "workspaces.43" and "workspaces.43.<id>" address the same tree at
// different depths.
type Store interface {
	// Get returns the raw JSON stored at key.
	Get(key string) (json.RawMessage, bool, error)

	// Set stores value, JSON encoded, at key. Missing parents are created.
	Set(key string, value any) error

	// Unset removes key. Removing a missing key is not an error.
	Unset(key string) error

	// Ping checks that the backing database is usable.
	Ping() error

	Close() error
}

// documents is implemented by backends. Each root segment of a key maps to
// one JSON document.
type documents interface {
	// view returns the document, or nil when it does not exist.
	view(root string) ([]byte, error)

	// update replaces the document with fn's result inside one transaction.
	// A nil result deletes the document.
	update(root string, fn func(doc []byte) ([]byte, error)) error

	close() error
}

// Open creates the store of the given kind in dir.
func Open(kind, dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating settings directory: %w", err)
	}

	switch kind {
	case KindBolt, "":
		b, err := NewBolt(boltPath(dir))
		if err != nil {
			return nil, err
		}

		return b, nil
	case KindSQLite:
		s, err := NewSQLite(sqlitePath(dir))
		if err != nil {
			return nil, err
		}

		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// GetInto decodes the value at key into v.
func GetInto(s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return true, nil
}

// kv implements Store on top of a document backend.
type kv struct {
	docs documents
}

func (s *kv) Get(key string) (json.RawMessage, bool, error) {
	root, path, err := splitKey(key)
	if err != nil {
		return nil, false, err
	}

	doc, err := s.docs.view(root)
	if err != nil {
		return nil, false, err
	}

	raw, ok := lookup(doc, path)
	if !ok {
		return nil, false, nil
	}

	return json.RawMessage(raw), true, nil
}

func (s *kv) Set(key string, value any) error {
	root, path, err := splitKey(key)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	return s.docs.update(root, func(doc []byte) ([]byte, error) {
		return assign(doc, path, raw)
	})
}

func (s *kv) Unset(key string) error {
	root, path, err := splitKey(key)
	if err != nil {
		return err
	}

	return s.docs.update(root, func(doc []byte) ([]byte, error) {
		return remove(doc, path)
	})
}

func (s *kv) Close() error {
	return s.docs.close()
}
