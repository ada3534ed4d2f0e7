package db

import (
	"context"

	"soundmark/core"
)

// QueryStore matches a probe's landmarks against a Store without loading
// the whole catalog into memory: one LookupMany round trip for the
// probe's hash set, a transient index over the postings that came back,
// then core's offset-histogram vote. Returns core.Query's ranked matches;
// an empty slice means no hash collided.
func QueryStore(ctx context.Context, store Store, probe []core.Landmark) ([]core.Match, error) {
	hashes := make([]core.Hash, 0, len(probe))
	seen := make(map[core.Hash]struct{}, len(probe))
	for _, lm := range probe {
		if _, ok := seen[lm.Hash]; ok {
			continue
		}
		seen[lm.Hash] = struct{}{}
		hashes = append(hashes, lm.Hash)
	}

	postings, err := store.LookupMany(ctx, hashes)
	if err != nil {
		return nil, err
	}

	idx := core.NewIndex()
	for h, ps := range postings {
		idx.Insert(h, ps...)
	}
	return core.Query(idx, probe), nil
}
