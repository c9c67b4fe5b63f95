// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package refs remembers which external document each experiment maps
// to, per sync target, in an embedded BadgerDB. Keys are
// "<target>/<experiment id>", values the target's page or file id. The
// store is advisory: losing it means the next sync creates fresh
// documents instead of updating, nothing worse.
package refs

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Store is a BadgerDB-backed ref map.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the ref store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open ref store at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral ref store. Useful for testing.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory ref store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func key(target, experimentID string) []byte {
	return []byte(target + "/" + experimentID)
}

// Get returns the external ref recorded for the experiment on the
// target, or ok=false when none is known.
func (s *Store) Get(target, experimentID string) (ref string, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(target, experimentID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			ref = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read ref %s/%s: %w", target, experimentID, err)
	}
	return ref, true, nil
}

// Put records the external ref for the experiment on the target,
// overwriting any previous value.
func (s *Store) Put(target, experimentID, ref string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(target, experimentID), []byte(ref))
	})
	if err != nil {
		return fmt.Errorf("write ref %s/%s: %w", target, experimentID, err)
	}
	return nil
}

// Delete forgets the ref for the experiment on the target. Missing
// keys are not an error.
func (s *Store) Delete(target, experimentID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(target, experimentID))
	})
	if err != nil {
		return fmt.Errorf("delete ref %s/%s: %w", target, experimentID, err)
	}
	return nil
}
