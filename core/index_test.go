package core_test

import (
	"testing"

	"soundmark/core"
)

func TestIndex_AddAndLookup(t *testing.T) {
	idx := core.NewIndex()
	landmarks := []core.Landmark{
		{Hash: core.Pack(1, 2, 100), AnchorTimeMs: 0},
		{Hash: core.Pack(1, 2, 100), AnchorTimeMs: 500},
	}
	idx.Add("song-a", landmarks)

	postings := idx.Lookup(core.Pack(1, 2, 100))
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	for _, p := range postings {
		if p.ReferenceID != "song-a" {
			t.Errorf("expected reference id %q, got %q", "song-a", p.ReferenceID)
		}
	}
}

func TestIndex_InsertRehydratesPostings(t *testing.T) {
	idx := core.NewIndex()
	h := core.Pack(3, 4, 250)
	idx.Insert(h,
		core.Posting{ReferenceID: "song-a", AnchorTimeMs: 100},
		core.Posting{ReferenceID: "song-b", AnchorTimeMs: 200},
	)

	postings := idx.Lookup(h)
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if postings[0].ReferenceID != "song-a" || postings[1].ReferenceID != "song-b" {
		t.Errorf("postings out of order: %+v", postings)
	}
}

func TestIndex_LookupMiss(t *testing.T) {
	idx := core.NewIndex()
	if postings := idx.Lookup(core.Pack(9, 9, 9)); postings != nil {
		t.Errorf("expected nil for an unindexed hash, got %v", postings)
	}
}

func TestIndex_AddEmptyReferenceIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an empty reference id")
		}
	}()
	core.NewIndex().Add("", []core.Landmark{{Hash: 1, AnchorTimeMs: 0}})
}

func TestIndex_LookupReturnsACopy(t *testing.T) {
	idx := core.NewIndex()
	idx.Add("song-a", []core.Landmark{{Hash: 7, AnchorTimeMs: 42}})

	postings := idx.Lookup(7)
	postings[0].AnchorTimeMs = 999

	if fresh := idx.Lookup(7); fresh[0].AnchorTimeMs != 42 {
		t.Errorf("mutating the returned slice affected the index: got %d, want 42", fresh[0].AnchorTimeMs)
	}
}
