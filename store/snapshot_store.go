// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

// Package store persists model snapshots on the device using BadgerDB.
// Snapshots are opaque byte blobs; versioning and validation belong to
// the engine that produces and consumes them.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for BadgerDB storage.
const snapshotKeyPrefix = "model:"

// ErrNotFound reports that no snapshot exists under the requested name.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore is a durable, named snapshot store backed by BadgerDB.
// Multiple named slots allow a rollback copy alongside the live model.
type SnapshotStore struct {
	db *badger.DB
}

// Open opens (or creates) a snapshot store at the given directory.
func Open(path string) (*SnapshotStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logger is too chatty for an embedded store

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store at %s: %w", path, err)
	}
	return &SnapshotStore{db: db}, nil
}

// NewWithDB wraps an existing BadgerDB handle. The caller keeps ownership
// of the handle; Close on the returned store still closes it.
func NewWithDB(db *badger.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save writes a snapshot under the given name, replacing any previous
// snapshot with that name.
func (s *SnapshotStore) Save(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("snapshot name must not be empty")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(snapshotKeyPrefix + name)
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set snapshot %s: %w", name, err)
		}
		return nil
	})
}

// Load reads the snapshot stored under the given name. Returns
// ErrNotFound when no such snapshot exists.
func (s *SnapshotStore) Load(name string) ([]byte, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		key := []byte(snapshotKeyPrefix + name)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get snapshot %s: %w", name, err)
		}

		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes the snapshot stored under the given name. Deleting a
// missing snapshot is not an error.
func (s *SnapshotStore) Delete(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(snapshotKeyPrefix + name)
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete snapshot %s: %w", name, err)
		}
		return nil
	})
}

// List returns the names of all stored snapshots in lexical order.
func (s *SnapshotStore) List() ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(snapshotKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close flushes and closes the underlying database.
func (s *SnapshotStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close snapshot store: %w", err)
	}
	return nil
}
