package core_test

import (
	"math"
	"math/cmplx"
	"testing"

	"soundmark/core"
)

func TestFFT_BasicSignal(t *testing.T) {
	sampleRate := 1000.0
	frequency := 10.0
	numSamples := 64

	signal := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		signal[i] = math.Sin(2 * math.Pi * frequency * float64(i) / sampleRate)
	}

	result := core.FFT(signal)

	if len(result) != numSamples {
		t.Fatalf("expected FFT output length %d, got %d", numSamples, len(result))
	}

	expectedBin := int(frequency * float64(numSamples) / sampleRate)
	peakBin := 0
	maxMag := 0.0
	for i := 0; i < numSamples/2; i++ {
		mag := cmplx.Abs(result[i])
		if mag > maxMag {
			maxMag = mag
			peakBin = i
		}
	}

	if math.Abs(float64(peakBin-expectedBin)) > 2 {
		t.Errorf("expected peak near bin %d, got bin %d", expectedBin, peakBin)
	}
}

func TestFFT_DCSignal(t *testing.T) {
	signal := make([]float64, 8)
	for i := range signal {
		signal[i] = 5.0
	}

	result := core.FFT(signal)

	dcValue := cmplx.Abs(result[0])
	expectedDC := 5.0 * float64(len(signal))
	if math.Abs(dcValue-expectedDC) > 0.01 {
		t.Errorf("expected DC component %.2f, got %.2f", expectedDC, dcValue)
	}

	for i := 1; i < len(result); i++ {
		if mag := cmplx.Abs(result[i]); mag > 0.01 {
			t.Errorf("expected near-zero magnitude at bin %d, got %.4f", i, mag)
		}
	}
}

func TestFFT_PowerOfTwo(t *testing.T) {
	for _, size := range []int{2, 4, 8, 16, 32, 64, 128, 256, 1024} {
		signal := make([]float64, size)
		for i := range signal {
			signal[i] = float64(i)
		}

		result := core.FFT(signal)
		if len(result) != size {
			t.Errorf("size %d: expected output length %d, got %d", size, size, len(result))
		}
	}
}

func TestFFT_ConjugateSymmetry(t *testing.T) {
	signal := []float64{1, 2, 3, 4, 4, 3, 2, 1}
	result := core.FFT(signal)

	n := len(result)
	for k := 1; k < n/2; k++ {
		expected := cmplx.Conj(result[n-k])
		if cmplx.Abs(result[k]-expected) > 1e-10 {
			t.Errorf("conjugate symmetry violated at bin %d", k)
		}
	}
}

func BenchmarkFFT_1024(b *testing.B) {
	signal := make([]float64, core.NFFT)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * float64(i) / float64(core.NFFT))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		core.FFT(signal)
	}
}
