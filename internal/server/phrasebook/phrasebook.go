// Package phrasebook stores learned difficulty synonyms in BadgerDB and
// serves them to the difficulty parser.
package phrasebook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chess/internal/server/core"
	"chess/internal/server/transcript"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "difficulty:"

// Store wraps BadgerDB for the synonym table
type Store struct {
	db *badger.DB
}

// Open opens or creates a phrasebook in dir
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	return open(opts)
}

// OpenInMemory creates a phrasebook that lives only as long as the process
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open phrasebook: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func phraseKey(phrase string) ([]byte, error) {
	normalized := strings.Join(transcript.Tokens(phrase), " ")
	if normalized == "" {
		return nil, fmt.Errorf("empty phrase")
	}
	return []byte(keyPrefix + normalized), nil
}

// Learn maps phrase to d. Built-in words cannot be redefined.
func (s *Store) Learn(phrase string, d core.Difficulty) error {
	if _, ok := core.ParseDifficultyName(d.String()); !ok {
		return fmt.Errorf("invalid difficulty: %d", d)
	}
	key, err := phraseKey(phrase)
	if err != nil {
		return err
	}
	if word := strings.TrimPrefix(string(key), keyPrefix); transcript.IsBuiltin(word) {
		return fmt.Errorf("%q is part of the built-in vocabulary", word)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(d.String()))
	})
}

// Forget removes a learned phrase
func (s *Store) Forget(phrase string) error {
	key, err := phraseKey(phrase)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// List returns every learned phrase
func (s *Store) List() (map[string]core.Difficulty, error) {
	phrases := make(map[string]core.Difficulty)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			phrase := strings.TrimPrefix(string(item.KeyCopy(nil)), keyPrefix)
			err := item.Value(func(val []byte) error {
				if d, ok := core.ParseDifficultyName(string(val)); ok {
					phrases[phrase] = d
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return phrases, err
}

// Resolve implements transcript.Resolver
func (s *Store) Resolve(ctx context.Context, phrase string) (core.Difficulty, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	key, err := phraseKey(phrase)
	if err != nil {
		return 0, false, nil
	}

	var d core.Difficulty
	found := false
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			d, found = core.ParseDifficultyName(string(val))
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("phrasebook lookup failed: %w", err)
	}
	return d, found, nil
}
