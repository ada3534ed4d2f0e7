// Package fileformat turns arbitrary input audio (WAV, MP3, or anything
// ffmpeg understands) into the mono float64 sample slices core expects,
// already resampled to core.SampleRate.
package fileformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"soundmark/core"
	"soundmark/utils"
)

// ConvertToWAV shells out to ffmpeg to transcode inputFilePath into a
// mono, 16-bit PCM WAV file at core.SampleRate, the format every other
// decoder in this package expects. channels outside [1, 2] is treated as
// 1 (mono).
func ConvertToWAV(inputFilePath string, channels int) (wavFilePath string, err error) {
	if _, err := os.Stat(inputFilePath); err != nil {
		return "", fmt.Errorf("fileformat: input file does not exist: %w", err)
	}

	if channels < 1 || channels > 2 {
		channels = 1
	}

	ext := filepath.Ext(inputFilePath)
	outputFile := strings.TrimSuffix(inputFilePath, ext) + ".wav"
	if outputFile == inputFilePath {
		// ffmpeg refuses to write over its own input.
		outputFile = strings.TrimSuffix(inputFilePath, ext) + "_converted.wav"
	}

	cmd := exec.Command(
		"ffmpeg",
		"-y",
		"-i", inputFilePath,
		"-c", "pcm_s16le",
		"-ar", fmt.Sprint(core.SampleRate),
		"-ac", fmt.Sprint(channels),
		outputFile,
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("fileformat: ffmpeg conversion failed: %w (output: %s)", err, output)
	}

	return outputFile, nil
}

// DecodeFile decodes any supported audio file into mono float64 samples
// at core.SampleRate, dispatching on extension: WAV and MP3 are decoded
// natively, everything else goes through ffmpeg.
func DecodeFile(path string) ([]float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		samples, err := DecodeWAV(path)
		if err == nil {
			return samples, nil
		}
		// Some encoders emit extension chunks the 44-byte parser
		// rejects; go-audio/wav tolerates them.
		return DecodeGoAudioWAV(path)
	case ".mp3":
		return DecodeMP3(path)
	default:
		wavPath, err := ConvertToWAV(path, 1)
		if err != nil {
			return nil, err
		}
		defer utils.DeleteFile(wavPath)
		return DecodeWAV(wavPath)
	}
}

// FFProbeMetadata is the subset of ffprobe's JSON report this repository
// reads: the audio stream's format details and its container-level tags.
type FFProbeMetadata struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		Duration   string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// GetMetadata shells out to ffprobe and parses its JSON report, lowercasing
// tag keys so "Artist" and "ARTIST" read the same way regardless of the
// source file's tagging convention.
func GetMetadata(path string) (FFProbeMetadata, error) {
	var metadata FFProbeMetadata

	cmd := exec.Command("ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return metadata, fmt.Errorf("fileformat: ffprobe failed: %w (stderr: %s)", err, stderr.String())
	}

	if err := json.Unmarshal(out.Bytes(), &metadata); err != nil {
		return metadata, fmt.Errorf("fileformat: parsing ffprobe output: %w", err)
	}

	lowered := make(map[string]string, len(metadata.Format.Tags))
	for k, v := range metadata.Format.Tags {
		lowered[strings.ToLower(k)] = v
	}
	metadata.Format.Tags = lowered

	return metadata, nil
}
