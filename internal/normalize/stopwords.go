// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

// punctuationStopwords is always merged into a loaded stopword set, matching
// the reference corpus's fixed punctuation list.
var punctuationStopwords = []string{"?", "-", ".", ":", ",", "!", ";", "_"}

// defaultStoplistRaw is a general English stopword list, embedded at build
// time so a `build` invocation with no --stopwords flag still drops common
// function words the way the reference's unconditional
// `open("utils/stoplist.txt")` load does (spec §4.1 step 4: "a
// language-specific list"), instead of silently indexing "the"/"a"/"of".
//
//go:embed stoplist.txt
var defaultStoplistRaw []byte

// StopwordSet is a case-folded set of tokens that Normalize drops.
type StopwordSet map[string]struct{}

// LoadStopwordSet reads one stopword per line from path, case-folds each to
// lowercase, strips trailing whitespace, and augments the result with the
// fixed punctuation marks every corpus normalizer must drop.
//
// An empty or all-blank file yields a StopwordSet containing only the
// punctuation marks; that is a valid, if unusual, configuration.
func LoadStopwordSet(path string) (StopwordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopword file: %w", err)
	}
	defer f.Close()

	set, err := parseStopwords(f)
	if err != nil {
		return nil, fmt.Errorf("read stopword file: %w", err)
	}
	return set, nil
}

// DefaultStopwordSet returns the embedded general English stopword list,
// augmented with the fixed punctuation marks. This is what a build or query
// invocation uses when no --stopwords path is given.
func DefaultStopwordSet() StopwordSet {
	set, err := parseStopwords(strings.NewReader(string(defaultStoplistRaw)))
	if err != nil {
		// The embedded list is a build-time constant; a parse failure here
		// would mean the embed itself is corrupt, not a runtime condition.
		panic(fmt.Sprintf("normalize: embedded stoplist.txt: %v", err))
	}
	return set
}

// parseStopwords reads one stopword per line from r, case-folding and
// trimming trailing whitespace, and merges in the fixed punctuation marks.
func parseStopwords(r io.Reader) (StopwordSet, error) {
	set := make(StopwordSet)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimRight(scanner.Text(), " \t\r\n"))
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, p := range punctuationStopwords {
		set[p] = struct{}{}
	}
	return set, nil
}

// NewStopwordSet builds a StopwordSet from an in-memory word list, augmented
// with the fixed punctuation marks. Useful for tests and for embedding a
// default list without a file on disk.
func NewStopwordSet(words []string) StopwordSet {
	set := make(StopwordSet, len(words)+len(punctuationStopwords))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	for _, p := range punctuationStopwords {
		set[p] = struct{}{}
	}
	return set
}

// Contains reports whether word is in the stopword set.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}
