// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package query implements the cosine-similarity query engine (C8): it
// normalizes free text the same way the build pipeline did, resolves each
// surviving term through the IDF table and block lookup, and accumulates a
// TF-IDF cosine score per candidate document.
package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/spimidex/spimidex/internal/index"
	"github.com/spimidex/spimidex/internal/normalize"
)

// Result is one ranked hit: a document identifier and its cosine similarity
// to the query, in [0, 1] by construction.
type Result struct {
	DocID index.DocID
	Score float64
}

// Resolver is the subset of *index.Index a query needs: term lookup and idf
// weights against a Ready index. Exists as an interface so query logic can
// be tested against a fake without building a real on-disk index.
type Resolver interface {
	Lookup(term index.Term) ([]index.Posting, bool, error)
	IDF(term index.Term) (float64, bool)
}

// Engine answers free-text queries against a Resolver using the same
// Normalizer a build used, per spec §4.8 step 1 ("the same stemming
// setting used at build time").
type Engine struct {
	resolver   Resolver
	normalizer *normalize.Normalizer
}

// New constructs a query Engine.
func New(resolver Resolver, normalizer *normalize.Normalizer) *Engine {
	return &Engine{resolver: resolver, normalizer: normalizer}
}

// Query normalizes text, scores every candidate document by TF-IDF cosine
// similarity, and returns at most k results ordered by descending score.
// Ties break by ascending DocID for a deterministic, reproducible order.
func (e *Engine) Query(text string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	terms := e.normalizer.Normalize(text)

	qtf := make(map[index.Term]int, len(terms))
	for _, t := range terms {
		qtf[index.Term(t)]++
	}

	type termWeight struct {
		term index.Term
		qw   float64
	}
	var weights []termWeight

	score := make(map[index.DocID]float64)
	dmag2 := make(map[index.DocID]float64)

	var qmagSq float64
	for term, tf := range qtf {
		idfVal, ok := e.resolver.IDF(term)
		if !ok {
			continue
		}
		qw := math.Log10(1+float64(tf)) * idfVal
		weights = append(weights, termWeight{term: term, qw: qw})
		qmagSq += qw * qw
	}

	for _, w := range weights {
		postings, ok, err := e.resolver.Lookup(w.term)
		if err != nil {
			return nil, fmt.Errorf("query: lookup %q: %w", w.term, err)
		}
		if !ok {
			continue
		}
		idfVal, _ := e.resolver.IDF(w.term)
		for _, p := range postings {
			dw := math.Log10(1+float64(p.Freq)) * idfVal
			score[p.DocID] += dw * w.qw
			dmag2[p.DocID] += dw * dw
		}
	}

	qmag := math.Sqrt(qmagSq)
	if qmag == 0 {
		return nil, nil
	}

	results := make([]Result, 0, len(score))
	for docID, s := range score {
		dm2 := dmag2[docID]
		if dm2 == 0 {
			continue
		}
		cos := s / (qmag * math.Sqrt(dm2))
		results = append(results, Result{DocID: docID, Score: cos})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
