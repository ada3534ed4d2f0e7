package core

import "sort"

// Query matches a probe's landmarks against idx and returns every
// reference with at least one vote, ranked by score descending, ties
// broken by ReferenceID ascending for determinism.
//
// For every landmark hash shared between the probe and a reference, the
// offset between the probe's anchor time and the reference's anchor time
// is bucketed into BucketWidthMs-wide buckets by floor division:
//
//	bucket = (referenceAnchorMs - probeAnchorMs) div BucketWidthMs
//
// A reference's score is the largest number of votes any single bucket
// accumulates; a true match produces many landmarks agreeing on the same
// offset bucket, while unrelated audio spreads its votes thinly across
// many buckets. If the probe has no landmark in common with any indexed
// reference, Query returns an empty slice, not an error: that is a valid
// outcome, not a failure.
func Query(idx *Index, probe []Landmark) []Match {
	type key struct {
		referenceID string
		bucket      int64
	}
	votes := make(map[key]int)

	for _, p := range probe {
		for _, posting := range idx.Lookup(p.Hash) {
			bucket := floorDiv(int64(posting.AnchorTimeMs)-int64(p.AnchorTimeMs), BucketWidthMs)
			votes[key{referenceID: posting.ReferenceID, bucket: bucket}]++
		}
	}

	best := make(map[string]int)
	for k, v := range votes {
		if v > best[k.referenceID] {
			best[k.referenceID] = v
		}
	}

	matches := make([]Match, 0, len(best))
	for referenceID, score := range best {
		matches = append(matches, Match{ReferenceID: referenceID, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ReferenceID < matches[j].ReferenceID
	})

	return matches
}

// Best returns the single highest-ranked match from Query's output, or
// NoMatch if matches is empty.
func Best(matches []Match) Match {
	if len(matches) == 0 {
		return NoMatch
	}
	return matches[0]
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
