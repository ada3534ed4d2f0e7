package fileformat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"soundmark/core"
	"soundmark/logging"
	"soundmark/models"
	"soundmark/utils"
)

// WavHeader is the 44-byte canonical RIFF/WAVE header this package reads
// and writes; it deliberately only covers plain PCM, the one format every
// other decoder in this repository needs.
type WavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	BytesPerSec   uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

func writeWavHeader(file *os.File, data []byte, sampleRate, channels, bitsPerSample int) error {
	if channels <= 0 || len(data)%channels != 0 {
		return fmt.Errorf("fileformat: invalid data length for %d channel(s)", channels)
	}

	bytesPerSample := bitsPerSample / 8
	header := WavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(data)),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		BytesPerSec:   uint32(channels * sampleRate * bytesPerSample),
		BlockAlign:    uint16(bytesPerSample * channels),
		BitsPerSample: uint16(bitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(len(data)),
	}

	if err := binary.Write(file, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("fileformat: writing wav header: %w", err)
	}
	return nil
}

// WriteWavFile writes a PCM WAV file at filename from raw little-endian
// sample bytes plus the format parameters describing them.
func WriteWavFile(filename string, data []byte, sampleRate, channels, bitsPerSample int) error {
	if sampleRate <= 0 || channels <= 0 || bitsPerSample <= 0 {
		return fmt.Errorf(
			"fileformat: sampleRate, channels, and bitsPerSample must be positive (got %d, %d, %d)",
			sampleRate, channels, bitsPerSample,
		)
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeWavHeader(f, data, sampleRate, channels, bitsPerSample); err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// WavInfo is a decoded WAV file's format parameters plus its raw PCM body.
type WavInfo struct {
	Channels   int
	SampleRate int
	Data       []byte
	Duration   float64
}

// ReadWavInfo parses the RIFF/WAVE header at filename and returns its
// format parameters alongside the undecoded PCM payload.
func ReadWavInfo(filename string) (*WavInfo, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("fileformat: reading %s: %w", filename, err)
	}
	if len(data) < 44 {
		return nil, errors.New("fileformat: file too short to contain a wav header")
	}

	var header WavHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.ChunkID[:]) != "RIFF" || string(header.Format[:]) != "WAVE" || header.AudioFormat != 1 {
		return nil, errors.New("fileformat: not a PCM wav file")
	}
	if header.BitsPerSample != 16 {
		return nil, fmt.Errorf("fileformat: unsupported bits per sample: %d", header.BitsPerSample)
	}

	info := &WavInfo{
		Channels:   int(header.NumChannels),
		SampleRate: int(header.SampleRate),
		Data:       data[44:],
	}
	info.Duration = float64(len(info.Data)) / float64(info.Channels*2*info.SampleRate)
	return info, nil
}

// WavBytesToSample converts little-endian 16-bit PCM bytes into normalized
// float64 samples in [-1.0, 1.0].
func WavBytesToSample(data []byte) ([]float64, error) {
	if len(data)%2 != 0 {
		return nil, errors.New("fileformat: odd number of PCM bytes")
	}

	output := make([]float64, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(data[i : i+2]))
		output[i/2] = float64(sample) / 32768.0
	}
	return output, nil
}

// DecodeWAV reads path, reformatting it to mono at core.SampleRate first
// when its header doesn't already match, and returns normalized samples
// ready for core.Spectrogram.
func DecodeWAV(path string) ([]float64, error) {
	info, err := ReadWavInfo(path)
	if err != nil {
		return nil, err
	}

	if info.Channels == 1 && info.SampleRate == core.SampleRate {
		return WavBytesToSample(info.Data)
	}

	reformatted, err := ConvertToWAV(path, 1)
	if err != nil {
		return nil, err
	}
	defer utils.DeleteFile(reformatted)

	info, err = ReadWavInfo(reformatted)
	if err != nil {
		return nil, err
	}
	return WavBytesToSample(info.Data)
}

// ProcessRecording decodes a base64 PCM payload captured by a microphone
// client into mono float64 samples at core.SampleRate, optionally
// persisting the original capture under recordings/ for later replay.
func ProcessRecording(rec models.RecordData, saveRecording bool) ([]float64, error) {
	ctx := context.Background()
	audioData, err := base64.StdEncoding.DecodeString(rec.Audio)
	if err != nil {
		return nil, fmt.Errorf("fileformat: decoding base64 recording: %w", err)
	}

	if err := utils.CreateFolder("tmp"); err != nil {
		return nil, logging.Error(ctx, "fileformat: creating tmp folder", err)
	}

	filename := filepath.Join("tmp", fmt.Sprintf("capture_%d.wav", time.Now().UnixNano()))
	if err := WriteWavFile(filename, audioData, rec.SampleRate, rec.Channels, rec.SampleSize); err != nil {
		return nil, err
	}
	defer utils.DeleteFile(filename)

	samples, err := DecodeWAV(filename)
	if err != nil {
		return nil, err
	}

	if saveRecording {
		if err := utils.CreateFolder("recordings"); err != nil {
			logging.Error(ctx, "fileformat: creating recordings folder", err)
		} else {
			saved := strings.Replace(filename, "tmp"+string(filepath.Separator), "recordings"+string(filepath.Separator), 1)
			if err := copyFile(filename, saved); err != nil {
				logging.Error(ctx, "fileformat: saving recording copy", err)
			}
		}
	}

	return samples, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
