package core_test

import (
	"testing"

	"soundmark/core"
)

func TestSession_AddReferenceAndQuery(t *testing.T) {
	session := core.NewSession()
	peaks := samplePeaks(40)
	session.AddReference("song-a", peaks)

	if got := session.Peaks("song-a"); len(got) != len(peaks) {
		t.Fatalf("expected %d stored peaks, got %d", len(peaks), len(got))
	}

	best := core.Best(session.Query(peaks))
	if best.ReferenceID != "song-a" {
		t.Errorf("expected song-a ranked first, got %q", best.ReferenceID)
	}
}

func TestSession_PeaksMissingReference(t *testing.T) {
	session := core.NewSession()
	if got := session.Peaks("missing"); got != nil {
		t.Errorf("expected nil for a reference never added, got %v", got)
	}
}

func TestSession_References(t *testing.T) {
	session := core.NewSession()
	session.AddReference("song-a", samplePeaks(10))
	session.AddReference("song-b", samplePeaks(10))

	ids := session.References()
	if len(ids) != 2 {
		t.Fatalf("expected 2 references, got %d", len(ids))
	}
}
