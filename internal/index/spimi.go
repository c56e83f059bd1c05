// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// DefaultBlockLimit is the number of documents fed into the accumulator
// before a flush, matching the reference implementation's default.
const DefaultBlockLimit = 500

// BuildOptions configures a SPIMI pass. Construct with DefaultBuildOptions
// and override via the With* functions; NewSpimiBuilder replaces a
// non-positive BlockLimit (including the zero value's) with DefaultBlockLimit.
type BuildOptions struct {
	// BlockLimit is the number of distinct documents processed before the
	// accumulator is flushed to a temp block. Document-count based, not
	// memory-size based, per spec §4.4.
	BlockLimit int
}

// DefaultBuildOptions returns the default SPIMI configuration.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{BlockLimit: DefaultBlockLimit}
}

// BuildOption is a functional option for BuildOptions.
type BuildOption func(*BuildOptions)

// WithBlockLimit overrides the document-count flush threshold.
func WithBlockLimit(n int) BuildOption {
	return func(o *BuildOptions) {
		if n > 0 {
			o.BlockLimit = n
		}
	}
}

// SpimiBuilder streams a tokenized corpus into bounded in-memory
// accumulators, flushing each as a sorted temp block once BlockLimit
// documents have been processed.
type SpimiBuilder struct {
	opts   BuildOptions
	logger *slog.Logger
}

// NewSpimiBuilder constructs a SpimiBuilder. A nil logger falls back to
// slog.Default().
func NewSpimiBuilder(opts BuildOptions, logger *slog.Logger) *SpimiBuilder {
	if opts.BlockLimit <= 0 {
		opts.BlockLimit = DefaultBlockLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SpimiBuilder{opts: opts, logger: logger}
}

// TempBlockPath returns the conventional temp block path for block k inside
// dir.
func TempBlockPath(dir string, k int) string {
	return filepath.Join(dir, fmt.Sprintf("temp_block_%d.bin", k))
}

// Build drains docs into successive temp blocks and returns the number of
// temp blocks written (T, for the merger). An empty corpus yields T=0 and is
// not an error.
func (b *SpimiBuilder) Build(ctx context.Context, docs DocumentSource, dir string) (int, error) {
	acc := NewPartialIndex()
	blockCount := 0
	docCount := 0

	flush := func() error {
		if acc.Len() == 0 {
			return nil
		}
		entries := acc.DrainSorted()
		path := TempBlockPath(dir, blockCount)
		if err := WriteBlock(path, entries); err != nil {
			return fmt.Errorf("spimi: flush block %d: %w", blockCount, err)
		}
		b.logger.Debug("spimi: flushed temp block",
			slog.Int("block", blockCount),
			slog.Int("terms", len(entries)),
			slog.Int("documents", docCount),
		)
		blockCount++
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return blockCount, fmt.Errorf("spimi: %w", err)
		}

		doc, ok, err := docs.Next()
		if err != nil {
			return blockCount, fmt.Errorf("spimi: read corpus: %w", err)
		}
		if !ok {
			break
		}

		for _, term := range doc.Terms {
			acc.Add(term, doc.ID)
		}
		docCount++

		if docCount%b.opts.BlockLimit == 0 {
			if err := flush(); err != nil {
				return blockCount, err
			}
		}
	}

	if err := flush(); err != nil {
		return blockCount, err
	}

	b.logger.Info("spimi: build pass complete",
		slog.Int("documents", docCount),
		slog.Int("temp_blocks", blockCount),
	)
	return blockCount, nil
}
