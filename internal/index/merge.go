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
	"math"
	"os"
	"path/filepath"
	"sort"
)

// FinalBlockPath returns the conventional final block path for block k
// inside dir.
func FinalBlockPath(dir string, k int) string {
	return filepath.Join(dir, fmt.Sprintf("block_%d.bin", k))
}

// levelBlockPath names an intermediate merge level's output distinctly from
// both temp_block_* and block_*, so a level's writes never alias the files
// an in-progress level is still reading — the reference implementation's
// bug (spec §9: "the merger writes its output using the final naming at
// every level ... overwrites the same file set that later levels read") is
// avoided by construction rather than by careful ordering.
func levelBlockPath(dir string, level, k int) string {
	return filepath.Join(dir, fmt.Sprintf("merge_level_%d_block_%d.bin", level, k))
}

// Merger runs the hierarchical pairwise-merge passes that turn T
// overlapping-range temp blocks into a final block family satisfying
// I1–I4.
type Merger struct {
	logger *slog.Logger
}

// NewMerger constructs a Merger. A nil logger falls back to slog.Default().
func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger}
}

// Merge merges totalBlocks temp blocks in dir into the final block family
// and returns the final block count. That count equals totalBlocks unless
// the vocabulary has fewer terms than totalBlocks, in which case it equals
// the vocabulary size: empty chunks are never written. totalBlocks==0 is the
// empty-corpus case and returns (0, nil) without touching disk.
func (m *Merger) Merge(ctx context.Context, dir string, totalBlocks int) (int, error) {
	if totalBlocks == 0 {
		return 0, nil
	}
	if totalBlocks == 1 {
		if err := renameBlock(TempBlockPath(dir, 0), FinalBlockPath(dir, 0)); err != nil {
			return 0, fmt.Errorf("merge: promote single block: %w", err)
		}
		return 1, nil
	}

	levels := int(math.Ceil(math.Log2(float64(totalBlocks))))
	pathAt := func(level, k int) string {
		if level == 0 {
			return TempBlockPath(dir, k)
		}
		return levelBlockPath(dir, level, k)
	}

	for level := 1; level <= levels; level++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("merge: %w", err)
		}

		step := 1 << uint(level)
		for start := 0; start < totalBlocks; start += step {
			// Corrected bound: totalBlocks-1, not totalBlocks (spec §9).
			finish := start + step - 1
			if finish > totalBlocks-1 {
				finish = totalBlocks - 1
			}

			if err := m.mergeRun(dir, level, start, finish, pathAt); err != nil {
				return 0, fmt.Errorf("merge: level %d run [%d,%d]: %w", level, start, finish, err)
			}
		}

		m.removeLevel(dir, level-1, totalBlocks, pathAt)
		m.logger.Debug("merge: level complete", slog.Int("level", level), slog.Int("step", step))
	}

	// The vocabulary can be smaller than totalBlocks for a tiny corpus
	// (I4 allows floor(V/B)==0). balancedChunkSizes always places any
	// zero-size chunks at the tail of the final merge run, so the blocks
	// that do exist are exactly indices [0, finalCount) — already
	// contiguous, no renumbering needed.
	finalCount := 0
	for k := 0; k < totalBlocks; k++ {
		src := pathAt(levels, k)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			break
		}
		if err := renameBlock(src, FinalBlockPath(dir, k)); err != nil {
			return 0, fmt.Errorf("merge: finalize block %d: %w", k, err)
		}
		finalCount++
	}

	m.logger.Info("merge: complete", slog.Int("final_blocks", finalCount), slog.Int("levels", levels))
	return finalCount, nil
}

// mergeRun performs one merge-and-rebalance operation: load every block in
// [start, finish] from its current-level path, combine postings under each
// term (summing frequencies on any (term, doc) collision even though
// disjoint document ranges make collisions impossible under C4's
// per-document flushing), and write back a balanced re-partition spanning
// the same [start, finish] index range at the next level.
func (m *Merger) mergeRun(dir string, level, start, finish int, pathAt func(level, k int) string) error {
	combined := make(map[Term][]Posting)
	var order []Term

	for i := start; i <= finish; i++ {
		path := pathAt(level-1, i)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// An earlier level's run that held fewer terms than blocks
			// skipped writing its empty chunks, so this index has no
			// file at the previous level; nothing to merge for it here.
			continue
		}
		block, err := ReadBlock(path)
		if err != nil {
			return fmt.Errorf("load block %d: %w", i, err)
		}
		for _, tp := range block.Entries {
			if _, seen := combined[tp.Term]; !seen {
				order = append(order, tp.Term)
			}
			combined[tp.Term] = mergeEntries(combined[tp.Term], tp.Entries)
		}
	}

	sortedTerms := sortTerms(order)

	n := len(sortedTerms)
	k := finish - start + 1
	chunkSizes := balancedChunkSizes(n, k)

	idx := 0
	for c, size := range chunkSizes {
		chunk := make([]TermPostings, size)
		for j := 0; j < size; j++ {
			t := sortedTerms[idx]
			chunk[j] = TermPostings{Term: t, Entries: combined[t]}
			idx++
		}
		outPath := pathAt(level, start+c)
		if len(chunk) == 0 {
			continue
		}
		if err := WriteBlock(outPath, chunk); err != nil {
			return fmt.Errorf("write chunk %d: %w", start+c, err)
		}
	}
	return nil
}

// removeLevel deletes every file written at the given level (or, for level
// 0, every temp block), now that the next level has consumed it.
func (m *Merger) removeLevel(dir string, level, totalBlocks int, pathAt func(level, k int) string) {
	for i := 0; i < totalBlocks; i++ {
		_ = os.Remove(pathAt(level, i))
	}
}

// balancedChunkSizes partitions n items into k contiguous chunks as evenly
// as possible: the first n mod k chunks get ceil(n/k) items, the rest get
// floor(n/k) (spec §4.5 step 3, I4).
func balancedChunkSizes(n, k int) []int {
	base := n / k
	remainder := n % k
	sizes := make([]int, k)
	for i := 0; i < k; i++ {
		if i < remainder {
			sizes[i] = base + 1
		} else {
			sizes[i] = base
		}
	}
	return sizes
}

// sortTerms returns a sorted copy of terms.
func sortTerms(terms []Term) []Term {
	out := make([]Term, len(terms))
	copy(out, terms)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func renameBlock(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", oldPath, newPath, err)
	}
	return nil
}
