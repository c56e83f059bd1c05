// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math"
	"os"
)

// IDFTable is the precomputed term → inverse-document-frequency mapping,
// built once from a full corpus pass and resident in memory for the life of
// the query engine.
type IDFTable struct {
	N      int
	Values map[Term]float64
}

// idfGobPayload is the on-disk shape for IDFTable, encoded with the same
// gob codec as blocks (spec §9: "keep the two computations consistent").
type idfGobPayload struct {
	N      int
	Values map[Term]float64
}

// BuildIDF computes idf(t) = log10(N / df(t)) for every term the
// normalizer produces across docs, where N is the total document count and
// df(t) is the number of documents containing t at least once. A document
// contributing zero surviving tokens still counts toward N.
func BuildIDF(ctx context.Context, docs DocumentSource, logger *slog.Logger) (*IDFTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	df := make(map[Term]int)
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("idf: %w", err)
		}

		doc, ok, err := docs.Next()
		if err != nil {
			return nil, fmt.Errorf("idf: read corpus: %w", err)
		}
		if !ok {
			break
		}
		n++

		seen := make(map[Term]struct{}, len(doc.Terms))
		for _, t := range doc.Terms {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	values := make(map[Term]float64, len(df))
	for term, count := range df {
		values[term] = math.Log10(float64(n) / float64(count))
	}

	logger.Info("idf: table built", slog.Int("documents", n), slog.Int("vocabulary", len(values)))
	return &IDFTable{N: n, Values: values}, nil
}

// Lookup returns the idf weight for term and whether it was present in the
// table at all. Terms absent from the table contribute nothing to scoring
// and incur no block lookup (spec §4.8 step 2).
func (t *IDFTable) Lookup(term Term) (float64, bool) {
	v, ok := t.Values[term]
	return v, ok
}

// Save persists the table to path using encoding/gob, the same codec used
// for blocks.
func (t *IDFTable) Save(path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(idfGobPayload{N: t.N, Values: t.Values}); err != nil {
		return fmt.Errorf("idf: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("idf: write %s: %w", path, err)
	}
	return nil
}

// LoadIDF reads a table written by Save.
func LoadIDF(path string) (*IDFTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("idf: read %s: %w", path, err)
	}
	var payload idfGobPayload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: idf decode %s: %v", ErrBlockCorrupt, path, err)
	}
	return &IDFTable{N: payload.N, Values: payload.Values}, nil
}
