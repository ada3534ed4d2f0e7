package core

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/window"
)

// Spectrogram converts a mono PCM signal sampled at SampleRate into a
// real-valued magnitude spectrogram S[f][t], f in [0, NFFT/2], t indexing
// successive HopLength-spaced frames.
//
// Each frame is windowed with a Hann window of length NFFT before the FFT;
// output magnitude is the absolute value of the complex STFT. Frames that
// run past the end of the signal are zero-padded rather than dropped, so
// the frame count is ceil((len(samples) - NFFT) / HopLength) + 1 for
// signals at least NFFT samples long.
//
// A signal shorter than NFFT produces a spectrogram with zero frames
// rather than an error.
func Spectrogram(samples []float64) [][]float64 {
	if len(samples) < NFFT {
		return [][]float64{}
	}

	frames := ceilDiv(len(samples)-NFFT, HopLength) + 1
	hann := window.Hann(NFFT)

	spectrogram := make([][]float64, frames)
	frame := make([]float64, NFFT)

	for t := 0; t < frames; t++ {
		start := t * HopLength
		for i := 0; i < NFFT; i++ {
			if start+i < len(samples) {
				frame[i] = samples[start+i] * hann[i]
			} else {
				frame[i] = 0
			}
		}

		spectrum := FFT(frame)
		magnitudes := make([]float64, NyquistBin+1)
		for f := 0; f <= NyquistBin; f++ {
			magnitudes[f] = cmplx.Abs(spectrum[f])
		}
		spectrogram[t] = magnitudes
	}

	return spectrogram
}

func ceilDiv(numerator, denominator int) int {
	if numerator <= 0 {
		return 0
	}
	return (numerator + denominator - 1) / denominator
}
