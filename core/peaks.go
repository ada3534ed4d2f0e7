package core

import (
	"math"
	"sort"
)

// peakCandidate is a frequency band's loudest bin within a single frame,
// before the PeakDelta/MinAmp admission test.
type peakCandidate struct {
	bin   int
	level float64
}

// dBMagnitude converts a linear magnitude spectrogram to a dB scale
// relative to the global maximum magnitude across the whole spectrogram,
// clipped at DBFloor so silence never produces -Inf.
func dBMagnitude(spectrogram [][]float64) [][]float64 {
	globalMax := 0.0
	for _, frame := range spectrogram {
		for _, mag := range frame {
			if mag > globalMax {
				globalMax = mag
			}
		}
	}
	if globalMax == 0 {
		globalMax = 1
	}

	db := make([][]float64, len(spectrogram))
	for t, frame := range spectrogram {
		row := make([]float64, len(frame))
		for f, mag := range frame {
			if mag <= 0 {
				row[f] = DBFloor
				continue
			}
			v := 20 * math.Log10(mag/globalMax)
			if v < DBFloor {
				v = DBFloor
			}
			row[f] = v
		}
		db[t] = row
	}
	return db
}

// ExtractPeaks selects constellation points from a magnitude spectrogram.
//
// The spectrum is first converted to dB relative to the global peak. Each
// frame is partitioned into the 11 bands in freqBands; within each band the
// single loudest bin is a candidate. A candidate is admitted as a peak only
// if both:
//
//   - it clears PeakDelta dB above the median of that frame's candidates, and
//   - its absolute level is above MinAmp dB.
//
// Admitted candidates are ranked loudest-first and capped at
// MaxPeaksPerFrame, ties in loudness broken deterministically by lower
// frequency bin index. The survivors are emitted sorted by time
// ascending, frequency ascending within a frame.
func ExtractPeaks(spectrogram [][]float64) []Peak {
	if len(spectrogram) == 0 {
		return []Peak{}
	}

	db := dBMagnitude(spectrogram)
	hopSeconds := float64(HopLength) / float64(SampleRate)

	var peaks []Peak
	for t, frame := range db {
		if len(frame) > NyquistBin+1 {
			invariantViolation("frame %d has %d bins, want at most %d", t, len(frame), NyquistBin+1)
		}
		candidates := make([]peakCandidate, 0, len(freqBands))
		for _, band := range freqBands {
			bestBin := -1
			bestLevel := DBFloor - 1
			for bin := band[0]; bin < band[1] && bin < len(frame); bin++ {
				if frame[bin] > bestLevel {
					bestLevel = frame[bin]
					bestBin = bin
				}
			}
			if bestBin >= 0 {
				candidates = append(candidates, peakCandidate{bin: bestBin, level: bestLevel})
			}
		}
		if len(candidates) == 0 {
			continue
		}

		median := medianLevel(candidates)

		admitted := candidates[:0:0]
		for _, c := range candidates {
			if c.level > median+PeakDelta && c.level > MinAmp {
				admitted = append(admitted, c)
			}
		}

		sort.SliceStable(admitted, func(i, j int) bool {
			if admitted[i].level != admitted[j].level {
				return admitted[i].level > admitted[j].level
			}
			return admitted[i].bin < admitted[j].bin
		})
		if len(admitted) > MaxPeaksPerFrame {
			admitted = admitted[:MaxPeaksPerFrame]
		}

		// Peaks within a frame share a timestamp, so the ordered-by-time
		// output contract resolves to frequency ascending here.
		sort.Slice(admitted, func(i, j int) bool { return admitted[i].bin < admitted[j].bin })

		for _, c := range admitted {
			peaks = append(peaks, Peak{
				TimeSeconds: float64(t) * hopSeconds,
				FrequencyHz: uint16(float64(c.bin) * FreqResolution),
			})
		}
	}

	if peaks == nil {
		peaks = []Peak{}
	}
	return peaks
}

func medianLevel(candidates []peakCandidate) float64 {
	levels := make([]float64, len(candidates))
	for i, c := range candidates {
		levels[i] = c.level
	}
	sort.Float64s(levels)
	n := len(levels)
	if n%2 == 1 {
		return levels[n/2]
	}
	return (levels[n/2-1] + levels[n/2]) / 2
}
