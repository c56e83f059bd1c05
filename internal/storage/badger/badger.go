// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package badger wraps github.com/dgraph-io/badger/v4 behind a small,
// context-aware transaction API, the same shape the service-global routing
// cache used it under. It exists so call sites depend on this package's
// narrow surface rather than badger's full API.
package badger

import (
	"context"
	"fmt"

	dgbadger "github.com/dgraph-io/badger/v4"
)

// Config controls how a DB is opened.
type Config struct {
	// Path is the on-disk directory BadgerDB stores its LSM tree and value
	// log under. Ignored when InMemory is true.
	Path string

	// InMemory opens BadgerDB with no disk footprint at all — suitable for
	// tests and ephemeral build caches.
	InMemory bool

	// Logger, when non-nil, is wired into badger.Options.Logger so GC and
	// compaction diagnostics surface through the same structured logger as
	// the rest of the process. A nil Logger disables badger's own log
	// output (it defaults to noisy stderr logging otherwise).
	Logger dgbadger.Logger
}

// DefaultConfig returns a Config for a persistent DB with an empty Path,
// which the caller sets before opening, and badger's internal logging
// silenced.
func DefaultConfig() Config {
	return Config{Path: "", InMemory: false}
}

// InMemoryConfig returns a Config for an ephemeral, disk-free DB.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// DB wraps an open badger.DB instance.
type DB struct {
	inner *dgbadger.DB
}

// OpenDB opens (creating if necessary) a BadgerDB instance per cfg.
func OpenDB(cfg Config) (*DB, error) {
	opts := dgbadger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(cfg.Logger)

	inner, err := dgbadger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", cfg.Path, err)
	}
	return &DB{inner: inner}, nil
}

// Close releases the DB's file handles and in-memory state.
func (d *DB) Close() error {
	if err := d.inner.Close(); err != nil {
		return fmt.Errorf("badger: close: %w", err)
	}
	return nil
}

// WithTxn runs fn inside a read-write transaction, committing on success and
// discarding on error or panic. ctx is checked before the transaction starts
// so a cancelled caller never begins work it would only have to discard.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("badger: %w", err)
	}
	return d.inner.Update(fn)
}

// WithReadTxn runs fn inside a read-only transaction.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *dgbadger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("badger: %w", err)
	}
	return d.inner.View(fn)
}
