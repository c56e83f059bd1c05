// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package corpus reads the tabular corpus input (spec §7: "a tabular file
// with at least two columns named song_id and lyrics") and adapts it into
// the index.DocumentSource a build pass consumes.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spimidex/spimidex/internal/index"
	"github.com/spimidex/spimidex/internal/normalize"
)

// ErrMissingColumn is returned when the CSV header lacks song_id or lyrics.
var ErrMissingColumn = errors.New("corpus: missing required column")

const (
	columnDocID  = "song_id"
	columnLyrics = "lyrics"
)

// RawDocument is one corpus row before normalization: its stable identifier
// and raw lyrics text.
type RawDocument struct {
	DocID index.DocID
	Text  string
}

// RawSource yields RawDocuments one at a time, the same single-use-stream
// contract as index.DocumentSource but before tokenization.
type RawSource interface {
	Next() (doc RawDocument, ok bool, err error)
}

// CSVSource reads RawDocuments from a CSV file in file order. Other columns
// besides song_id and lyrics are ignored.
type CSVSource struct {
	file      *os.File
	reader    *csv.Reader
	docIdx    int
	lyricsIdx int
	exhausted bool
}

// OpenCSV opens path and reads its header, resolving the song_id and lyrics
// column positions. The returned CSVSource owns the underlying file handle;
// callers must call Close once done (or after draining Next to ok=false).
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("corpus: read header of %s: %w", path, err)
	}

	docIdx, lyricsIdx := -1, -1
	for i, name := range header {
		switch name {
		case columnDocID:
			docIdx = i
		case columnLyrics:
			lyricsIdx = i
		}
	}
	if docIdx == -1 || lyricsIdx == -1 {
		f.Close()
		return nil, fmt.Errorf("corpus: %s: %w %q/%q", path, ErrMissingColumn, columnDocID, columnLyrics)
	}

	return &CSVSource{file: f, reader: r, docIdx: docIdx, lyricsIdx: lyricsIdx}, nil
}

// Next returns the next row's RawDocument, or ok=false once the file is
// exhausted.
func (s *CSVSource) Next() (RawDocument, bool, error) {
	if s.exhausted {
		return RawDocument{}, false, nil
	}

	record, err := s.reader.Read()
	if err == io.EOF {
		s.exhausted = true
		return RawDocument{}, false, nil
	}
	if err != nil {
		return RawDocument{}, false, fmt.Errorf("corpus: read row: %w", err)
	}

	maxIdx := s.docIdx
	if s.lyricsIdx > maxIdx {
		maxIdx = s.lyricsIdx
	}
	if maxIdx >= len(record) {
		return RawDocument{}, false, fmt.Errorf("corpus: row has %d fields, need index %d", len(record), maxIdx)
	}

	return RawDocument{
		DocID: index.DocID(record[s.docIdx]),
		Text:  record[s.lyricsIdx],
	}, true, nil
}

// Close releases the underlying file handle.
func (s *CSVSource) Close() error {
	return s.file.Close()
}

// NormalizingSource adapts a RawSource into an index.DocumentSource by
// running each row's text through a Normalizer. A document whose lyrics
// normalize to zero surviving tokens still yields a TokenizedDocument with
// an empty Terms slice (spec §4.3 edge case: it is counted toward
// block_limit and N, but contributes no postings).
type NormalizingSource struct {
	raw        RawSource
	normalizer *normalize.Normalizer
}

// NewNormalizingSource constructs a NormalizingSource.
func NewNormalizingSource(raw RawSource, normalizer *normalize.Normalizer) *NormalizingSource {
	return &NormalizingSource{raw: raw, normalizer: normalizer}
}

// Next implements index.DocumentSource.
func (s *NormalizingSource) Next() (index.TokenizedDocument, bool, error) {
	doc, ok, err := s.raw.Next()
	if err != nil || !ok {
		return index.TokenizedDocument{}, ok, err
	}

	tokens := s.normalizer.Normalize(doc.Text)
	terms := make([]index.Term, len(tokens))
	for i, t := range tokens {
		terms[i] = index.Term(t)
	}

	return index.TokenizedDocument{ID: doc.DocID, Terms: terms}, true, nil
}
