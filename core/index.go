package core

import "sync"

// Index is the inverted multimap from a landmark Hash to every Posting
// recorded under it, across every reference added with Add.
//
// A zero Index is not usable; construct one with NewIndex. Safe for
// concurrent use: Add and Lookup may be called from multiple goroutines.
type Index struct {
	mu    sync.RWMutex
	table map[Hash][]Posting
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{table: make(map[Hash][]Posting)}
}

// Add records every landmark produced for referenceID. referenceID must be
// non-empty; an empty id is a caller bug, not a recoverable condition.
func (idx *Index) Add(referenceID string, landmarks []Landmark) {
	if referenceID == "" {
		panic((&InputError{Reason: "Add: referenceID must not be empty"}).Error())
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, lm := range landmarks {
		idx.table[lm.Hash] = append(idx.table[lm.Hash], Posting{
			ReferenceID:  referenceID,
			AnchorTimeMs: lm.AnchorTimeMs,
		})
	}
}

// Insert records postings under h directly, bypassing landmark hashing.
// It exists for callers rehydrating an index from stored
// (hash, reference, anchor time) triples rather than from audio.
func (idx *Index) Insert(h Hash, postings ...Posting) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.table[h] = append(idx.table[h], postings...)
}

// Lookup returns every posting recorded under h, or nil if h was never
// added. The returned slice is a copy; callers may not mutate the index
// through it.
func (idx *Index) Lookup(h Hash) []Posting {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	postings := idx.table[h]
	if len(postings) == 0 {
		return nil
	}
	out := make([]Posting, len(postings))
	copy(out, postings)
	return out
}

// Len reports the number of distinct hashes recorded in the index.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.table)
}
