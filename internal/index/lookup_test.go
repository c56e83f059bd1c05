// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import "testing"

func writeFinalBlocks(t *testing.T, dir string, blocks [][]TermPostings) {
	t.Helper()
	for k, entries := range blocks {
		if err := WriteBlock(FinalBlockPath(dir, k), entries); err != nil {
			t.Fatalf("write final block %d: %v", k, err)
		}
	}
}

func TestBlockLookup_FindsTermInMiddleBlock(t *testing.T) {
	dir := t.TempDir()
	writeFinalBlocks(t, dir, [][]TermPostings{
		{tp("apple", "A"), tp("banana", "A")},
		{tp("mango", "B"), tp("orange", "B")},
		{tp("yam", "C"), tp("zebra", "C")},
	})

	lookup := NewBlockLookup(dir)
	postings, ok, err := lookup.Lookup("mango")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("expected term found")
	}
	if len(postings) != 1 || postings[0].DocID != "B" {
		t.Fatalf("postings = %+v, want single entry for B", postings)
	}
}

func TestBlockLookup_AbsentTermReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	writeFinalBlocks(t, dir, [][]TermPostings{
		{tp("apple", "A"), tp("lemon", "A")},
		{tp("mango", "B")},
	})

	lookup := NewBlockLookup(dir)

	// Below the first block's range.
	if _, ok, err := lookup.Lookup("aardvark"); err != nil || ok {
		t.Fatalf("Lookup(aardvark) = ok=%v err=%v, want ok=false", ok, err)
	}
	// Above the last block's range.
	if _, ok, err := lookup.Lookup("zebra"); err != nil || ok {
		t.Fatalf("Lookup(zebra) = ok=%v err=%v, want ok=false", ok, err)
	}
	// Inside a block's range but not present in it (the straddling case
	// spec §9 flags: must return absent, not fall through).
	if _, ok, err := lookup.Lookup("kiwi"); err != nil || ok {
		t.Fatalf("Lookup(kiwi) = ok=%v err=%v, want ok=false", ok, err)
	}
}

func TestBlockLookup_EmptyFamily(t *testing.T) {
	dir := t.TempDir()
	lookup := NewBlockLookup(dir)
	_, ok, err := lookup.Lookup("anything")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatalf("expected miss against an empty block family")
	}
}

func TestBlockLookup_CountIgnoresTempBlocks(t *testing.T) {
	dir := t.TempDir()
	writeFinalBlocks(t, dir, [][]TermPostings{{tp("a", "A")}})
	if err := WriteBlock(TempBlockPath(dir, 0), []TermPostings{tp("b", "B")}); err != nil {
		t.Fatalf("write temp block: %v", err)
	}

	count, err := NewBlockLookup(dir).BlockCount()
	if err != nil {
		t.Fatalf("BlockCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("BlockCount = %d, want 1 (temp_block_* must not count)", count)
	}
}

func TestBlockLookup_ReEnumeratesEachCall(t *testing.T) {
	dir := t.TempDir()
	writeFinalBlocks(t, dir, [][]TermPostings{{tp("a", "A")}})
	lookup := NewBlockLookup(dir)

	if _, ok, _ := lookup.Lookup("zzz"); ok {
		t.Fatalf("unexpected hit before second block written")
	}

	if err := WriteBlock(FinalBlockPath(dir, 1), []TermPostings{tp("zzz", "B")}); err != nil {
		t.Fatalf("write block 1: %v", err)
	}

	postings, ok, err := lookup.Lookup("zzz")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || len(postings) != 1 {
		t.Fatalf("expected the newly written block to be visible without reconstructing BlockLookup, got ok=%v postings=%+v", ok, postings)
	}
}
