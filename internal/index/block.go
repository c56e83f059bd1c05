// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrBlockCorrupt is returned when a block fails to decode, or decodes into
// an ordering that violates the ascending-terms invariant (I3). A corrupt
// block is fatal: spec §7 requires the index to be rebuilt, never silently
// repaired.
var ErrBlockCorrupt = errors.New("index: block corrupt")

// ErrTermNotFound is returned by Block.Lookup when the term is not present
// in that block's range. It is not a failure — spec §7 classifies a missing
// term as a query miss, not an error.
var ErrTermNotFound = errors.New("index: term not found")

// blockFile is the on-disk gob payload. It is always an ordered slice, never
// a map, so gob's encode/decode round trip preserves key order by
// construction (spec §4.3) instead of relying on any property of Go's map
// iteration.
type blockFile struct {
	Entries []TermPostings
}

// Block is an in-memory, read-only view of one on-disk block: an ordered
// sequence of (term, postings) pairs with ascending terms, as guaranteed by
// the writer.
type Block struct {
	Entries []TermPostings
}

// WriteBlock sorts entries by term (defensively — callers are expected to
// already hand it sorted data) and writes them to path as a single
// self-contained gob-encoded artifact.
func WriteBlock(path string, entries []TermPostings) error {
	sorted := make([]TermPostings, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Term < sorted[j].Term })

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blockFile{Entries: sorted}); err != nil {
		return fmt.Errorf("encode block %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write block %s: %w", path, err)
	}
	return nil
}

// writeBlockRaw writes entries to path without the defensive sort
// WriteBlock applies, for tests that need to construct a deliberately
// out-of-order file and exercise ReadBlock's corruption check.
func writeBlockRaw(path string, entries []TermPostings) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blockFile{Entries: entries}); err != nil {
		return fmt.Errorf("encode block %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadBlock loads and decodes a block written by WriteBlock. It validates
// that the decoded entries are in strictly ascending term order (I3); a
// violation means the file is corrupt (written by a different, incompatible
// process, truncated, or hand-edited) and is reported as ErrBlockCorrupt
// rather than silently accepted, per spec §7.
func ReadBlock(path string) (*Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read block %s: %w", path, err)
	}

	var bf blockFile
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&bf); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrBlockCorrupt, path, err)
	}
	for i := 1; i < len(bf.Entries); i++ {
		if bf.Entries[i-1].Term >= bf.Entries[i].Term {
			return nil, fmt.Errorf("%w: %s terms out of order at index %d", ErrBlockCorrupt, path, i)
		}
	}
	return &Block{Entries: bf.Entries}, nil
}

// Len returns the number of terms in the block.
func (b *Block) Len() int { return len(b.Entries) }

// FirstTerm returns the smallest term in the block. Panics if the block is
// empty; callers must not write or keep empty blocks.
func (b *Block) FirstTerm() Term { return b.Entries[0].Term }

// LastTerm returns the largest term in the block.
func (b *Block) LastTerm() Term { return b.Entries[len(b.Entries)-1].Term }

// Lookup binary-searches the block's internal sorted term list for an exact
// match, returning ErrTermNotFound if the term's range is covered by the
// block but no entry matches it exactly.
func (b *Block) Lookup(term Term) ([]Posting, error) {
	i := sort.Search(len(b.Entries), func(i int) bool { return b.Entries[i].Term >= term })
	if i < len(b.Entries) && b.Entries[i].Term == term {
		return b.Entries[i].Entries, nil
	}
	return nil, ErrTermNotFound
}
