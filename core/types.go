// Package core implements the landmark fingerprinting pipeline: spectral
// analysis, peak extraction, landmark hashing, and the inverted-index
// matcher. It does not import any of the ambient or domain collaborator
// packages of this repository — it operates purely on in-memory sample
// slices.
package core

const (
	// SampleRate is the canonical sample rate every signal entering the
	// core must already be resampled to. The core never resamples.
	SampleRate = 11000

	// NFFT is the STFT frame length.
	NFFT = 1024

	// HopLength is the number of samples advanced between consecutive
	// STFT frames.
	HopLength = 512

	// FreqResolution is the width, in Hz, of a single frequency bin.
	FreqResolution = float64(SampleRate) / float64(NFFT)

	// NyquistBin is the index of the Nyquist frequency bin, excluded from
	// peak extraction by design.
	NyquistBin = NFFT / 2

	// PeakDelta is the minimum number of dB a band candidate must clear
	// above its frame's median to be admitted as a peak.
	PeakDelta = 15.0

	// MinAmp is the absolute dB floor (relative to the global max) below
	// which a candidate is never admitted, regardless of PeakDelta.
	MinAmp = -60.0

	// DBFloor is the clipping floor applied when converting magnitudes to
	// a dB scale, so that silence never produces -Inf.
	DBFloor = -80.0

	// MaxPeaksPerFrame bounds how many peaks a single time frame may
	// contribute.
	MaxPeaksPerFrame = 10

	// FanOut is the maximum number of target peaks paired with each
	// anchor peak.
	FanOut = 15

	// TargetZoneGap is the minimum index distance between an anchor and
	// its first candidate target, keeping near-duplicate pairs out of the
	// index.
	TargetZoneGap = 3

	// BucketWidthMs is the width, in milliseconds, of a matcher offset
	// bucket.
	BucketWidthMs = 100
)

// freqBands partitions the non-Nyquist half of the spectrum into 11
// logarithmic-ish bands, half-open on the upper bound. Bin 512 is
// intentionally never covered.
var freqBands = [][2]int{
	{0, 10}, {10, 20}, {20, 40}, {40, 80}, {80, 120}, {120, 160},
	{160, 210}, {210, 270}, {270, 340}, {340, 420}, {420, 512},
}

// Peak is a time-frequency landmark: a local maximum in the spectrogram
// selected as a robust constellation point. Immutable once produced.
type Peak struct {
	TimeSeconds float64
	FrequencyHz uint16
}

// Hash is a 41-bit packed landmark address, stored in the low bits of a
// 64-bit word. See Pack/Unpack.
type Hash uint64

// Posting is a single occurrence of a hash within an indexed reference.
type Posting struct {
	ReferenceID  string
	AnchorTimeMs uint32
}

// Match is one ranked result returned by the matcher.
type Match struct {
	ReferenceID string
	Score       int
}

// QueryReferenceID is the reference id assigned to a query's own hash set
// for clarity in logs and diagnostics; it is never looked up in the index.
const QueryReferenceID = "QUERY"
