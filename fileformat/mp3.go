package fileformat

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"soundmark/core"
	"soundmark/utils"
)

// DecodeMP3 decodes an MP3 file to mono float64 samples at core.SampleRate.
// go-mp3 always decodes to its source sample rate and stereo. When the
// source rate isn't core.SampleRate this falls back to ffmpeg via
// ConvertToWAV and DecodeWAV; otherwise the stereo stream is averaged
// down to mono here.
func DecodeMP3(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fileformat: opening mp3: %w", err)
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, fmt.Errorf("fileformat: decoding mp3: %w", err)
	}

	if decoder.SampleRate() != core.SampleRate {
		return decodeViaFFmpeg(path)
	}

	samples, err := readMP3Samples(decoder)
	if err != nil {
		return nil, err
	}
	return stereoInt16ToMonoFloat(samples), nil
}

func readMP3Samples(decoder *mp3.Decoder) ([]int16, error) {
	buf := make([]byte, 8192)
	var samples []int16
	for {
		n, err := decoder.Read(buf)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("fileformat: reading mp3 stream: %w", err)
		}
		for i := 0; i+1 < n; i += 2 {
			samples = append(samples, int16(buf[i])|int16(buf[i+1])<<8)
		}
	}
	return samples, nil
}

func decodeViaFFmpeg(path string) ([]float64, error) {
	wavPath, err := ConvertToWAV(path, 1)
	if err != nil {
		return nil, err
	}
	defer utils.DeleteFile(wavPath)
	return DecodeWAV(wavPath)
}

// DecodeGoAudioWAV decodes a WAV file through github.com/go-audio/wav
// instead of this package's own header parser, folding stereo down to
// mono the same way go-mp3 source material is folded. Kept alongside the
// hand-rolled DecodeWAV because a handful of WAV encoders emit extension
// chunks the 44-byte header parser rejects but go-audio/wav tolerates.
func DecodeGoAudioWAV(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fileformat: opening wav: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("fileformat: not a valid wav file: %s", path)
	}

	format := decoder.Format()
	buffer := &audio.IntBuffer{Data: make([]int, 8192), Format: format}

	var samples []int16
	for {
		n, err := decoder.PCMBuffer(buffer)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("fileformat: reading pcm: %w", err)
		}
		for i := 0; i < n; i++ {
			samples = append(samples, int16(buffer.Data[i]))
		}
		if n < len(buffer.Data) {
			break
		}
	}

	if format.NumChannels == 2 {
		return stereoInt16ToMonoFloat(samples), nil
	}

	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / 32768.0
	}
	return out, nil
}

func stereoInt16ToMonoFloat(stereo []int16) []float64 {
	if len(stereo)%2 != 0 {
		stereo = stereo[:len(stereo)-1]
	}
	mono := make([]float64, len(stereo)/2)
	for i := range mono {
		left := int32(stereo[i*2])
		right := int32(stereo[i*2+1])
		mono[i] = float64((left+right)/2) / 32768.0
	}
	return mono
}
