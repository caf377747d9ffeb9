// Package search implements the diagnosis search engine: text
// normalization, fuzzy ranking over the vocabulary, and query
// orchestration against the topography filter hierarchy. The engine is
// pure: it reads one immutable snapshot per query and mutates nothing.
package search

import (
	"time"

	"github.com/idea4rc/diagnosis-search/topography"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// Snapshot is one immutable generation of the loaded vocabulary and its
// topography index. A reload builds a complete new Snapshot and
// publishes it atomically; readers never observe a half-built state.
type Snapshot struct {
	Terms     []entities.Term
	TermsByID map[string]int // term ID -> position in Terms
	Index     *topography.Index
	BuiltAt   time.Time
}

// NewSnapshot assembles a snapshot from parsed terms and a built index.
// The terms slice must already carry normalized names and resolved
// site IDs; the snapshot takes ownership and callers must not mutate it
// afterwards.
func NewSnapshot(terms []entities.Term, index *topography.Index) *Snapshot {
	byID := make(map[string]int, len(terms))
	for i := range terms {
		byID[terms[i].ID] = i
	}
	return &Snapshot{
		Terms:     terms,
		TermsByID: byID,
		Index:     index,
		BuiltAt:   time.Now(),
	}
}

// Term returns the term with the given ID.
func (s *Snapshot) Term(id string) (entities.Term, bool) {
	pos, ok := s.TermsByID[id]
	if !ok {
		return entities.Term{}, false
	}
	return s.Terms[pos], true
}

// SnapshotSource provides the current snapshot. The data container
// implements it; queries do exactly one load per evaluation.
type SnapshotSource interface {
	GetSnapshot() *Snapshot
}
