package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"soundmark/core"
)

func TestConstellationImage_WritesPNG(t *testing.T) {
	peaks := samplePeaks(20)
	outPath := filepath.Join(t.TempDir(), "constellation.png")

	if err := core.ConstellationImage(peaks, 200, 100, outPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty PNG file")
	}
}

func TestConstellationImage_EmptyPeaksIsInputError(t *testing.T) {
	err := core.ConstellationImage(nil, 100, 100, filepath.Join(t.TempDir(), "x.png"))
	if err == nil {
		t.Fatal("expected an error for an empty peak set")
	}
	if _, ok := err.(*core.InputError); !ok {
		t.Errorf("expected *core.InputError, got %T", err)
	}
}
