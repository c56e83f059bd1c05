// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package buildcache remembers which on-disk index directory already holds
// a completed build for a given corpus, keyed by a hash of the corpus file
// plus the block limit and stemming setting that produced it. A `build`
// invocation that hashes to an already-cached entry can skip SPIMI and the
// merge entirely and hand the cached directory straight to the caller.
package buildcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"

	badgerstore "github.com/spimidex/spimidex/internal/storage/badger"
)

// defaultTTL is how long a build cache entry remains valid. Index
// directories are cheap to keep around, but a long-lived cache daemon
// should not accumulate entries for corpora nobody queries anymore.
const defaultTTL = 30 * 24 * time.Hour

// keyPrefix versions the storage layout so a future format change cannot
// collide with entries written by an older binary.
const keyPrefix = "buildcache/v1/"

var errMiss = errors.New("buildcache: miss")

// Entry is what gets cached for a successfully built corpus.
type Entry struct {
	IndexDir    string
	Documents   int
	TempBlocks  int
	FinalBlocks int
	Vocabulary  int
}

// Store persists and retrieves build Entries keyed by corpus hash.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the cached Entry for corpusHash, or ok=false on a clean
	// miss (absent or TTL-expired). A non-nil error indicates a genuine
	// storage failure, distinct from a miss.
	Load(ctx context.Context, corpusHash string) (entry Entry, ok bool, err error)

	// Save persists entry under corpusHash with the store's configured TTL.
	Save(ctx context.Context, corpusHash string, entry Entry) error
}

// BadgerStore implements Store backed by a badger.DB.
type BadgerStore struct {
	db     *badgerstore.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewBadgerStore constructs a BadgerStore over db. ttl<=0 selects the
// default (30 days). A nil logger falls back to slog.Default().
func NewBadgerStore(db *badgerstore.DB, ttl time.Duration, logger *slog.Logger) *BadgerStore {
	if db == nil {
		panic("buildcache: NewBadgerStore: db must not be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerStore{db: db, ttl: ttl, logger: logger}
}

// Load implements Store.
func (s *BadgerStore) Load(ctx context.Context, corpusHash string) (Entry, bool, error) {
	key := cacheKey(corpusHash)

	var raw []byte
	err := s.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, dgbadger.ErrKeyNotFound) {
			return errMiss
		}
		if err != nil {
			return fmt.Errorf("get cache key: %w", err)
		}
		raw, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, errMiss) {
		s.logger.Debug("buildcache: miss", slog.String("hash", shortHash(corpusHash)))
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("buildcache: load: %w", err)
	}

	var entry Entry
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&entry); err != nil {
		return Entry{}, false, fmt.Errorf("buildcache: decode: %w", err)
	}

	if _, err := os.Stat(entry.IndexDir); err != nil {
		// The directory backing this entry vanished since it was cached
		// (e.g. a manual cleanup); treat it as a miss rather than handing
		// the caller a dangling path.
		s.logger.Debug("buildcache: stale entry, index dir missing",
			slog.String("hash", shortHash(corpusHash)), slog.String("dir", entry.IndexDir))
		return Entry{}, false, nil
	}

	s.logger.Debug("buildcache: hit", slog.String("hash", shortHash(corpusHash)), slog.String("dir", entry.IndexDir))
	return entry, true, nil
}

// Save implements Store.
func (s *BadgerStore) Save(ctx context.Context, corpusHash string, entry Entry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("buildcache: encode: %w", err)
	}

	key := cacheKey(corpusHash)
	err := s.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		e := dgbadger.NewEntry(key, buf.Bytes()).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("buildcache: save: %w", err)
	}

	s.logger.Debug("buildcache: saved",
		slog.String("hash", shortHash(corpusHash)),
		slog.String("dir", entry.IndexDir),
		slog.Duration("ttl", s.ttl),
	)
	return nil
}

// CorpusHash computes a deterministic key binding a corpus file's content
// to the block limit and stemming setting used on it — a change to any of
// them produces a different hash and therefore a cache miss, requiring a
// fresh build. The stopword list is not part of the hash: two builds that
// differ only in their stopwords produce the same key.
func CorpusHash(corpusPath string, blockLimit int, stem bool) (string, error) {
	f, err := os.Open(corpusPath)
	if err != nil {
		return "", fmt.Errorf("buildcache: open corpus: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("buildcache: hash corpus: %w", err)
	}
	fmt.Fprintf(h, "\nblock_limit=%d\nstem=%t\n", blockLimit, stem)

	return hex.EncodeToString(h.Sum(nil)), nil
}

func cacheKey(corpusHash string) []byte {
	return []byte(keyPrefix + corpusHash)
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8] + "..."
	}
	return h
}
