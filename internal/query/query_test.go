// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query

import (
	"math"
	"testing"

	"github.com/spimidex/spimidex/internal/index"
	"github.com/spimidex/spimidex/internal/normalize"
)

// fakeResolver is a Resolver backed by plain maps, letting query-layer
// tests exercise Engine.Query without a real on-disk index.
type fakeResolver struct {
	idf      map[index.Term]float64
	postings map[index.Term][]index.Posting
}

func (f *fakeResolver) Lookup(term index.Term) ([]index.Posting, bool, error) {
	p, ok := f.postings[term]
	return p, ok, nil
}

func (f *fakeResolver) IDF(term index.Term) (float64, bool) {
	v, ok := f.idf[term]
	return v, ok
}

// twoDocToyCorpus builds the resolver for spec §8 scenario 1: doc A "hello
// world hello", doc B "world peace"; idf(hello)=idf(peace)=log10(2),
// idf(world)=0.
func twoDocToyCorpus() *fakeResolver {
	return &fakeResolver{
		idf: map[index.Term]float64{
			"hello": math.Log10(2),
			"peace": math.Log10(2),
			"world": 0,
		},
		postings: map[index.Term][]index.Posting{
			"hello": {{DocID: "A", Freq: 2}},
			"world": {{DocID: "A", Freq: 1}, {DocID: "B", Freq: 1}},
			"peace": {{DocID: "B", Freq: 1}},
		},
	}
}

func newEngine(r Resolver) *Engine {
	return New(r, normalize.New(normalize.NewStopwordSet(nil), false))
}

func TestQuery_HelloOnlyScoresDocA(t *testing.T) {
	engine := newEngine(twoDocToyCorpus())
	results, err := engine.Query("hello", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 || results[0].DocID != "A" {
		t.Fatalf("results = %+v, want single hit for A", results)
	}
	if results[0].Score <= 0 || results[0].Score > 1+epsilon {
		t.Fatalf("score = %v, want in (0, 1]", results[0].Score)
	}
}

func TestQuery_WorldHasZeroIDFSoNoResults(t *testing.T) {
	engine := newEngine(twoDocToyCorpus())
	results, err := engine.Query("world", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want empty (qmag=0 when the only term has idf=0)", results)
	}
}

func TestQuery_TermAbsentFromIndex(t *testing.T) {
	engine := newEngine(twoDocToyCorpus())
	results, err := engine.Query("nonexistent", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want empty", results)
	}
}

func TestQuery_StopWordOnlyQueryIsEmpty(t *testing.T) {
	resolver := &fakeResolver{idf: map[index.Term]float64{}, postings: map[index.Term][]index.Posting{}}
	engine := New(resolver, normalize.New(normalize.NewStopwordSet([]string{"the"}), false))
	results, err := engine.Query("the", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want empty for a stopword-only query", results)
	}
}

func TestQuery_TopKTruncatesAndOrdersDescending(t *testing.T) {
	resolver := &fakeResolver{
		idf: map[index.Term]float64{"x": 1.0},
		postings: map[index.Term][]index.Posting{
			"x": {
				{DocID: "low", Freq: 1},
				{DocID: "high", Freq: 5},
				{DocID: "mid", Freq: 2},
			},
		},
	}
	engine := newEngine(resolver)
	results, err := engine.Query("x", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2 (top-k truncation)", results)
	}
	if results[0].DocID != "high" {
		t.Fatalf("top result = %+v, want 'high' (a single-term query scores every document 1, so the ascending-DocID tie-break decides)", results[0])
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("results not descending: %+v", results)
		}
	}
}

func TestQuery_TopKLargerThanCandidates(t *testing.T) {
	engine := newEngine(twoDocToyCorpus())
	results, err := engine.Query("hello peace", 100)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want both candidate documents returned", results)
	}
}

const epsilon = 1e-9
