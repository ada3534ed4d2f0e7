package fileformat

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmark/core"
)

// pcm16 encodes float samples in [-1, 1] as little-endian 16-bit PCM.
func pcm16(samples []float64) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(s*32767)))
	}
	return data
}

func sine(durationSec float64, freqHz float64) []float64 {
	n := int(durationSec * core.SampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freqHz*float64(i)/core.SampleRate)
	}
	return samples
}

func TestWriteThenReadWavRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	original := sine(0.5, 440)

	require.NoError(t, WriteWavFile(path, pcm16(original), core.SampleRate, 1, 16))

	info, err := ReadWavInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, core.SampleRate, info.SampleRate)
	assert.InDelta(t, 0.5, info.Duration, 0.01)

	decoded, err := WavBytesToSample(info.Data)
	require.NoError(t, err)
	require.Len(t, decoded, len(original))
	for i := 0; i < len(decoded); i += 1000 {
		assert.InDelta(t, original[i], decoded[i], 1.0/32768*2)
	}
}

func TestDecodeWAVCanonicalFileNeedsNoFFmpeg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	original := sine(0.25, 880)
	require.NoError(t, WriteWavFile(path, pcm16(original), core.SampleRate, 1, 16))

	decoded, err := DecodeWAV(path)
	require.NoError(t, err)
	assert.Len(t, decoded, len(original))
}

func TestWriteWavFileRejectsBadParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	assert.Error(t, WriteWavFile(path, []byte{0, 0}, 0, 1, 16))
	assert.Error(t, WriteWavFile(path, []byte{0, 0}, core.SampleRate, 0, 16))
}

func TestReadWavInfoRejectsGarbage(t *testing.T) {
	_, err := ReadWavInfo(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	short := filepath.Join(t.TempDir(), "short.wav")
	require.NoError(t, writeBytes(short, []byte("RIFF")))
	_, err = ReadWavInfo(short)
	assert.Error(t, err)
}

func writeBytes(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func TestWavBytesToSampleRejectsOddLength(t *testing.T) {
	_, err := WavBytesToSample([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestStereoInt16ToMonoFloatAverages(t *testing.T) {
	mono := stereoInt16ToMonoFloat([]int16{16384, -16384, 8192, 8192})
	require.Len(t, mono, 2)
	assert.InDelta(t, 0, mono[0], 1e-9)
	assert.InDelta(t, 0.25, mono[1], 1e-3)
}
