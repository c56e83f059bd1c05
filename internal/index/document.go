// Copyright (C) 2026 Spimidex Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

// TokenizedDocument is one corpus document after normalization: its stable
// identifier and the ordered term sequence the normalizer produced for it.
type TokenizedDocument struct {
	ID    DocID
	Terms []Term
}

// DocumentSource yields TokenizedDocuments one at a time. Next returns
// ok=false (with a nil error) once the stream is exhausted. Implementations
// are not required to be safe for concurrent use; both C4 and C7 consume a
// source from a single goroutine.
type DocumentSource interface {
	Next() (doc TokenizedDocument, ok bool, err error)
}
