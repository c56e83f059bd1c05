// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package normalize turns raw document or query text into the ordered token
// sequence the rest of spimidex indexes and scores. It is a pure function
// package: no I/O, no shared state beyond the StopwordSet the caller loads
// once at startup.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// wordPattern matches runs of "word characters" — letters, digits, and
// underscore — the same token boundary Python's Unicode-aware `\w+` uses.
// Tokenizing on the Unicode letter/number classes (not just ASCII) keeps an
// accented or non-Latin word whole so the ASCII-alphabetic filter below can
// reject it outright, rather than splitting it into ASCII fragments that
// would wrongly pass the filter and get indexed.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Stemmer reduces a single already-filtered token to its stem. The zero value
// of the Normalizer's Stemmer field disables stemming.
type Stemmer func(token string) string

// EnglishSnowballStemmer is the production Stemmer, backed by the Snowball
// English algorithm. stemStopWords is left false: stopwords never reach the
// stemmer because they are filtered out first.
func EnglishSnowballStemmer(token string) string {
	return english.Stem(token, false)
}

// Normalizer applies the five-step normalization pipeline of the corpus
// normalizer: case-fold, tokenize, filter to ASCII-alphabetic tokens, drop
// stopwords, and optionally stem.
type Normalizer struct {
	Stopwords StopwordSet
	Stemmer   Stemmer // nil disables stemming
}

// New returns a Normalizer over the given stopword set. Pass stem=true to
// enable the Snowball English stemmer; pass false to leave tokens unstemmed.
func New(stopwords StopwordSet, stem bool) *Normalizer {
	n := &Normalizer{Stopwords: stopwords}
	if stem {
		n.Stemmer = EnglishSnowballStemmer
	}
	return n
}

// Normalize tokenizes s and returns the surviving terms in order, applying:
//
//  1. case-folding to lowercase
//  2. tokenization on runs of word characters
//  3. retention of tokens that are entirely ASCII alphabetic
//  4. stopword removal
//  5. optional stemming
//
// Malformed UTF-8 never panics; a token surviving tokenization but
// containing a digit or a non-ASCII letter is dropped whole at the
// ASCII-alphabetic filter, the same way the reference's
// `word.isascii() and word.isalpha()` check drops it. The output is
// deterministic for identical input.
func (n *Normalizer) Normalize(s string) []string {
	lower := strings.ToLower(s)
	tokens := wordPattern.FindAllString(lower, -1)

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !isASCIIAlpha(tok) {
			continue
		}
		if n.Stopwords.Contains(tok) {
			continue
		}
		if n.Stemmer != nil {
			tok = n.Stemmer(tok)
		}
		out = append(out, tok)
	}
	return out
}

// isASCIIAlpha reports whether every rune in s is an ASCII letter. Tokens
// containing digits or non-ASCII letters (accented characters, other
// scripts) are rejected at this step, matching the reference normalizer's
// `word.isascii() and word.isalpha()` filter.
func isASCIIAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
