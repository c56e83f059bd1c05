// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import "sort"

// PartialIndex is the bounded in-memory dictionary a SPIMI pass accumulates
// between flushes: a mapping from term to its postings entry, built by
// repeated Add calls and emptied by DrainSorted.
//
// PartialIndex is not safe for concurrent use; the SPIMI builder owns one
// instance per pass and never shares it across goroutines.
type PartialIndex struct {
	postings map[Term]map[DocID]int
}

// NewPartialIndex returns an empty accumulator.
func NewPartialIndex() *PartialIndex {
	return &PartialIndex{postings: make(map[Term]map[DocID]int)}
}

// Add increments the (term, doc) occurrence count by one, creating the term
// and document entries lazily.
func (p *PartialIndex) Add(term Term, doc DocID) {
	byDoc, ok := p.postings[term]
	if !ok {
		byDoc = make(map[DocID]int)
		p.postings[term] = byDoc
	}
	byDoc[doc]++
}

// Len returns the number of distinct terms currently held.
func (p *PartialIndex) Len() int {
	return len(p.postings)
}

// DrainSorted returns every (term, postings) pair in ascending term order and
// clears the accumulator. Each postings entry is itself sorted by DocID so
// that two builds of the same corpus produce byte-for-byte identical blocks.
func (p *PartialIndex) DrainSorted() []TermPostings {
	terms := make([]string, 0, len(p.postings))
	for t := range p.postings {
		terms = append(terms, string(t))
	}
	sort.Strings(terms)

	out := make([]TermPostings, 0, len(terms))
	for _, t := range terms {
		term := Term(t)
		byDoc := p.postings[term]
		docs := make([]string, 0, len(byDoc))
		for d := range byDoc {
			docs = append(docs, string(d))
		}
		sort.Strings(docs)

		entries := make([]Posting, len(docs))
		for i, d := range docs {
			entries[i] = Posting{DocID: DocID(d), Freq: byDoc[DocID(d)]}
		}
		out = append(out, TermPostings{Term: term, Entries: entries})
	}

	p.postings = make(map[Term]map[DocID]int)
	return out
}
