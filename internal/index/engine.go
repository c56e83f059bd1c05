// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrNotReady is returned when a query is attempted against an Index that
// has not completed a build or Open.
var ErrNotReady = errors.New("index: not ready")

const (
	idfFileName  = "idf.bin"
	metaFileName = "meta.json"
)

// State is the lifecycle stage of an Index, mirroring the
// Uninitialized -> Building -> Ready transitions the build pipeline drives
// a fresh index through.
type State int

const (
	StateUninitialized State = iota
	StateBuilding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// BuildResult reports counters from a completed build pass, surfaced to the
// CLI and to build-cache entries.
type BuildResult struct {
	Documents   int
	TempBlocks  int
	FinalBlocks int
	Vocabulary  int
}

// Meta records the normalization configuration a build used, so that a
// later `query` invocation against the same directory reconstructs an
// identical Normalizer automatically instead of requiring the caller to
// pass matching flags by hand (spec §4.8 step 1: "the same stemming
// setting used at build time").
type Meta struct {
	Stem bool `json:"stem"`
}

// SaveMeta writes meta to dir as small, human-readable JSON — the one piece
// of index state a person might plausibly want to eyeball directly.
func SaveMeta(dir string, meta Meta) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFileName), raw, 0o644); err != nil {
		return fmt.Errorf("index: write meta: %w", err)
	}
	return nil
}

// LoadMeta reads the Meta a build wrote to dir.
func LoadMeta(dir string) (Meta, error) {
	raw, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		return Meta{}, fmt.Errorf("index: read meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{}, fmt.Errorf("index: decode meta: %w", err)
	}
	return meta, nil
}

// Index is the top-level handle a caller builds once and queries many
// times. It owns the on-disk block family, the IDF table, and the lookup
// facility layered over them.
type Index struct {
	dir    string
	logger *slog.Logger

	state  State
	lookup *BlockLookup
	idf    *IDFTable
	meta   Meta
}

// New returns an Index rooted at dir in the Uninitialized state. dir is
// created if it does not already exist.
func New(dir string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("index: create dir %s: %w", dir, err)
	}
	return &Index{dir: dir, logger: logger, state: StateUninitialized}, nil
}

// Open reconstructs a Ready index from a directory a previous process
// already built: it loads the IDF table and wires up a BlockLookup over the
// existing final blocks, without re-running SPIMI or the merge. This is how
// a `query` invocation picks up what a separate `build` invocation produced.
func Open(dir string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	idfTable, err := LoadIDF(filepath.Join(dir, idfFileName))
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", dir, err)
	}
	blocks, err := ListFinalBlocks(dir)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", dir, err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("index: open %s: %w: no final blocks present", dir, ErrNotReady)
	}
	meta, err := LoadMeta(dir)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", dir, err)
	}
	logger.Info("index: opened", slog.String("dir", dir), slog.Int("blocks", len(blocks)))
	return &Index{
		dir:    dir,
		logger: logger,
		state:  StateReady,
		lookup: NewBlockLookup(dir),
		idf:    idfTable,
		meta:   meta,
	}, nil
}

// Meta returns the normalization configuration the build that produced this
// index used.
func (idx *Index) Meta() Meta {
	return idx.meta
}

// State returns the index's current lifecycle stage.
func (idx *Index) State() State {
	return idx.state
}

// Dir returns the index's backing directory.
func (idx *Index) Dir() string {
	return idx.dir
}

// Build runs the full C4->C7 pipeline: SPIMI accumulation against docs,
// hierarchical merge into a final block family, and an IDF table built from
// a second full pass over the same documents. docsFactory is called twice
// (once per pass) since DocumentSource is a single-use stream.
func (idx *Index) Build(ctx context.Context, docsFactory func() (DocumentSource, error), meta Meta, opts ...BuildOption) (BuildResult, error) {
	idx.state = StateBuilding

	buildOpts := DefaultBuildOptions()
	for _, opt := range opts {
		opt(&buildOpts)
	}

	spimiDocs, err := docsFactory()
	if err != nil {
		return BuildResult{}, fmt.Errorf("index: build: open corpus: %w", err)
	}
	builder := NewSpimiBuilder(buildOpts, idx.logger)
	tempBlocks, err := builder.Build(ctx, spimiDocs, idx.dir)
	if err != nil {
		return BuildResult{}, fmt.Errorf("index: build: %w", err)
	}

	merger := NewMerger(idx.logger)
	finalBlocks, err := merger.Merge(ctx, idx.dir, tempBlocks)
	if err != nil {
		return BuildResult{}, fmt.Errorf("index: build: %w", err)
	}

	idfDocs, err := docsFactory()
	if err != nil {
		return BuildResult{}, fmt.Errorf("index: build: reopen corpus for idf: %w", err)
	}
	idfTable, err := BuildIDF(ctx, idfDocs, idx.logger)
	if err != nil {
		return BuildResult{}, fmt.Errorf("index: build: %w", err)
	}
	if err := idfTable.Save(filepath.Join(idx.dir, idfFileName)); err != nil {
		return BuildResult{}, fmt.Errorf("index: build: %w", err)
	}
	if err := SaveMeta(idx.dir, meta); err != nil {
		return BuildResult{}, fmt.Errorf("index: build: %w", err)
	}

	idx.lookup = NewBlockLookup(idx.dir)
	idx.idf = idfTable
	idx.state = StateReady

	result := BuildResult{
		Documents:   idfTable.N,
		TempBlocks:  tempBlocks,
		FinalBlocks: finalBlocks,
		Vocabulary:  len(idfTable.Values),
	}
	idx.logger.Info("index: build complete",
		slog.Int("documents", result.Documents),
		slog.Int("temp_blocks", result.TempBlocks),
		slog.Int("final_blocks", result.FinalBlocks),
		slog.Int("vocabulary", result.Vocabulary),
	)
	return result, nil
}

// Lookup resolves the postings for term, usable once the index is Ready.
func (idx *Index) Lookup(term Term) ([]Posting, bool, error) {
	if idx.state != StateReady {
		return nil, false, ErrNotReady
	}
	return idx.lookup.Lookup(term)
}

// IDF returns the idf weight for term and whether it is present in the
// vocabulary.
func (idx *Index) IDF(term Term) (float64, bool) {
	if idx.idf == nil {
		return 0, false
	}
	return idx.idf.Lookup(term)
}

// DocumentCount returns N, the total documents the index was built over.
func (idx *Index) DocumentCount() int {
	if idx.idf == nil {
		return 0
	}
	return idx.idf.N
}
