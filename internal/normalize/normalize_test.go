// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"reflect"
	"testing"
)

func TestNormalize_TwoDocumentToyCorpus(t *testing.T) {
	n := New(NewStopwordSet(nil), false)

	got := n.Normalize("Hello world, hello!")
	want := []string{"hello", "world", "hello"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize(doc A) = %v, want %v", got, want)
	}

	got = n.Normalize("world peace.")
	want = []string{"world", "peace"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize(doc B) = %v, want %v", got, want)
	}
}

func TestNormalize_DropsStopwordsAndPunctuation(t *testing.T) {
	n := New(NewStopwordSet([]string{"the", "a"}), false)

	got := n.Normalize("The quick, brown fox; a tale.")
	want := []string{"quick", "brown", "fox", "tale"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestNormalize_RejectsNonAlphaTokens(t *testing.T) {
	n := New(NewStopwordSet(nil), false)

	got := n.Normalize("abc123 456 café naïve plain")
	want := []string{"plain"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestNormalize_NonASCIITokenStaysWholeAndIsDropped(t *testing.T) {
	n := New(NewStopwordSet(nil), false)

	// A Unicode word class tokenizer keeps "café"/"naïve"/"日本語" intact as
	// single tokens; the ASCII-alphabetic filter then drops each one whole.
	// An ASCII-only tokenizer would instead split on the accented/non-Latin
	// runes and admit ASCII fragments ("caf", "na", "ve") that the reference
	// never emits.
	got := n.Normalize("café naïve 日本語 plain")
	want := []string{"plain"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v (no ASCII fragments)", got, want)
	}
}

func TestDefaultStopwordSet_DropsCommonEnglishWords(t *testing.T) {
	n := New(DefaultStopwordSet(), false)

	// Spec §8 scenario 2: a single-document corpus where the query matches
	// only a stop word normalizes to an empty term sequence.
	got := n.Normalize("the")
	if len(got) != 0 {
		t.Fatalf("Normalize(\"the\") = %v, want empty (built-in stoplist must cover it)", got)
	}

	got = n.Normalize("The quick brown fox jumps over a lazy dog")
	want := []string{"quick", "brown", "fox", "jumps", "lazy", "dog"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize() = %v, want %v", got, want)
	}
}

func TestNormalize_EmptyAndMalformedInput(t *testing.T) {
	n := New(NewStopwordSet(nil), false)

	if got := n.Normalize(""); len(got) != 0 {
		t.Fatalf("Normalize(\"\") = %v, want empty", got)
	}
	if got := n.Normalize("\xff\xfe\x00"); len(got) != 0 {
		t.Fatalf("Normalize(malformed) = %v, want empty", got)
	}
}

func TestNormalize_StemmingIsOptional(t *testing.T) {
	unstemmed := New(NewStopwordSet(nil), false)
	stemmed := New(NewStopwordSet(nil), true)

	u := unstemmed.Normalize("running runs")
	s := stemmed.Normalize("running runs")

	if reflect.DeepEqual(u, s) {
		t.Fatalf("expected stemming to change output, got identical %v", u)
	}
	if s[0] != s[1] {
		t.Fatalf("expected 'running' and 'runs' to share a stem, got %v", s)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := New(NewStopwordSet([]string{"of"}), true)
	text := "The Art of War, by Sun Tzu - chapter one."

	first := n.Normalize(text)
	second := n.Normalize(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Normalize not deterministic: %v != %v", first, second)
	}
}
