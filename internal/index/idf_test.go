// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

const epsilon = 1e-9

// TestBuildIDF_TwoDocumentToyCorpus is spec §8 scenario 1: doc A "hello
// world hello", doc B "world peace", N=2.
func TestBuildIDF_TwoDocumentToyCorpus(t *testing.T) {
	docs := newSliceDocSource([]TokenizedDocument{
		{ID: "A", Terms: terms("hello", "world", "hello")},
		{ID: "B", Terms: terms("world", "peace")},
	})

	table, err := BuildIDF(context.Background(), docs, nil)
	if err != nil {
		t.Fatalf("BuildIDF: %v", err)
	}
	if table.N != 2 {
		t.Fatalf("N = %d, want 2", table.N)
	}

	cases := []struct {
		term Term
		want float64
	}{
		{"hello", math.Log10(2)},
		{"peace", math.Log10(2)},
		{"world", 0},
	}
	for _, c := range cases {
		got, ok := table.Lookup(c.term)
		if !ok {
			t.Fatalf("Lookup(%q) missing", c.term)
		}
		if math.Abs(got-c.want) > epsilon {
			t.Errorf("idf(%q) = %v, want %v", c.term, got, c.want)
		}
	}
}

func TestBuildIDF_EmptyLyricsDocumentCountsTowardN(t *testing.T) {
	docs := newSliceDocSource([]TokenizedDocument{
		{ID: "A", Terms: terms("hello")},
		{ID: "B", Terms: nil},
	})

	table, err := BuildIDF(context.Background(), docs, nil)
	if err != nil {
		t.Fatalf("BuildIDF: %v", err)
	}
	if table.N != 2 {
		t.Fatalf("N = %d, want 2 (empty-lyrics doc still counts)", table.N)
	}
	if _, ok := table.Lookup("hello"); !ok {
		t.Fatalf("expected 'hello' present")
	}
}

func TestBuildIDF_EmptyCorpus(t *testing.T) {
	table, err := BuildIDF(context.Background(), newSliceDocSource(nil), nil)
	if err != nil {
		t.Fatalf("BuildIDF: %v", err)
	}
	if table.N != 0 || len(table.Values) != 0 {
		t.Fatalf("expected empty table, got N=%d values=%d", table.N, len(table.Values))
	}
}

func TestIDFTable_SaveLoadRoundTrip(t *testing.T) {
	docs := newSliceDocSource([]TokenizedDocument{
		{ID: "A", Terms: terms("hello", "world")},
		{ID: "B", Terms: terms("world")},
	})
	table, err := BuildIDF(context.Background(), docs, nil)
	if err != nil {
		t.Fatalf("BuildIDF: %v", err)
	}

	path := filepath.Join(t.TempDir(), "idf.bin")
	if err := table.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadIDF(path)
	if err != nil {
		t.Fatalf("LoadIDF: %v", err)
	}
	if loaded.N != table.N {
		t.Fatalf("N = %d, want %d", loaded.N, table.N)
	}
	for term, want := range table.Values {
		got, ok := loaded.Lookup(term)
		if !ok || math.Abs(got-want) > epsilon {
			t.Fatalf("loaded idf(%q) = %v (ok=%v), want %v", term, got, ok, want)
		}
	}
}
