package core

// Session bundles an Index with the peak lists it was built from, so a
// caller can re-derive landmarks (for re-matching at a different fan-out,
// or for rendering a constellation diagnostic) without re-running the
// spectral analyzer and peak extractor against the original audio.
//
// A zero Session is not usable; construct one with NewSession.
type Session struct {
	Index *Index
	peaks map[string][]Peak
}

// NewSession returns an empty Session backed by a fresh Index.
func NewSession() *Session {
	return &Session{
		Index: NewIndex(),
		peaks: make(map[string][]Peak),
	}
}

// AddReference fingerprints peaks under referenceID and records both the
// resulting landmarks in the session's index and the peaks themselves for
// later retrieval with Peaks.
func (s *Session) AddReference(referenceID string, peaks []Peak) {
	s.Index.Add(referenceID, Fingerprint(peaks))
	s.peaks[referenceID] = peaks
}

// Peaks returns the peak list previously recorded for referenceID, or nil
// if no such reference was added.
func (s *Session) Peaks(referenceID string) []Peak {
	return s.peaks[referenceID]
}

// Query fingerprints the probe peaks and matches them against the
// session's index, without recording the probe as a reference.
func (s *Session) Query(probePeaks []Peak) []Match {
	return Query(s.Index, Fingerprint(probePeaks))
}

// References returns the ids of every reference added to the session, in
// no particular order.
func (s *Session) References() []string {
	ids := make([]string, 0, len(s.peaks))
	for id := range s.peaks {
		ids = append(ids, id)
	}
	return ids
}
