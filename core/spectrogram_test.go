package core_test

import (
	"math"
	"testing"

	"soundmark/core"
)

func sineWave(seconds float64, freqHz float64) []float64 {
	n := int(seconds * core.SampleRate)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / core.SampleRate
		samples[i] = math.Sin(2 * math.Pi * freqHz * t)
	}
	return samples
}

func TestSpectrogram_FrameCount(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		want    int
	}{
		{"exactly one frame", core.NFFT, 1},
		{"one hop past one frame", core.NFFT + core.HopLength, 2},
		{"partial extra frame rounds up", core.NFFT + core.HopLength + 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spectrogram := core.Spectrogram(make([]float64, tt.samples))
			if len(spectrogram) != tt.want {
				t.Errorf("got %d frames, want %d", len(spectrogram), tt.want)
			}
		})
	}
}

func TestSpectrogram_FrameWidth(t *testing.T) {
	spectrogram := core.Spectrogram(sineWave(1.0, 440))
	for i, frame := range spectrogram {
		if len(frame) != core.NyquistBin+1 {
			t.Fatalf("frame %d: got %d bins, want %d", i, len(frame), core.NyquistBin+1)
		}
	}
}

func TestSpectrogram_ShorterThanNFFT(t *testing.T) {
	spectrogram := core.Spectrogram(make([]float64, core.NFFT-1))
	if len(spectrogram) != 0 {
		t.Errorf("expected zero frames for a sub-NFFT signal, got %d", len(spectrogram))
	}
}

func TestSpectrogram_Silence(t *testing.T) {
	spectrogram := core.Spectrogram(make([]float64, core.NFFT*3))
	for i, frame := range spectrogram {
		for f, mag := range frame {
			if mag != 0 {
				t.Fatalf("frame %d bin %d: expected zero magnitude for silence, got %f", i, f, mag)
			}
		}
	}
}

func TestSpectrogram_SinusoidPeakBin(t *testing.T) {
	const freqHz = 1100.0
	spectrogram := core.Spectrogram(sineWave(1.0, freqHz))

	mid := spectrogram[len(spectrogram)/2]
	peakBin := 0
	maxMag := 0.0
	for bin, mag := range mid {
		if mag > maxMag {
			maxMag = mag
			peakBin = bin
		}
	}

	expectedBin := int(math.Round(freqHz / core.FreqResolution))
	if diff := peakBin - expectedBin; diff < -1 || diff > 1 {
		t.Errorf("expected peak bin within 1 of %d, got %d", expectedBin, peakBin)
	}
}

func BenchmarkSpectrogram_OneSecond(b *testing.B) {
	samples := sineWave(1.0, 440)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		core.Spectrogram(samples)
	}
}
