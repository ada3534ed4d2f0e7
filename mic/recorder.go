// Package mic captures audio from a microphone through portaudio and
// hands it off, resampled to the canonical rate, to the fingerprinting
// pipeline.
package mic

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gordonklaus/portaudio"

	"soundmark/fileformat"
	"soundmark/utils"
)

const framesPerBuffer = 2048

// Capture is one finished recording: raw 16-bit mono samples at whatever
// rate the input device actually delivered.
type Capture struct {
	Samples    []int16
	SampleRate int
}

// Duration reports the capture's length in seconds.
func (c Capture) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Warnings reports quality problems that degrade fingerprinting accuracy:
// a capture shorter than a second, a device rate below 22.05 kHz, or a
// near-silent signal.
func (c Capture) Warnings() []string {
	var warnings []string
	if len(c.Samples) < c.SampleRate {
		warnings = append(warnings, fmt.Sprintf("recording too short (%.2fs)", c.Duration()))
	}
	if c.SampleRate < 22050 {
		warnings = append(warnings, fmt.Sprintf("low sample rate (%d Hz) may affect accuracy", c.SampleRate))
	}

	var totalEnergy int64
	for _, s := range c.Samples {
		totalEnergy += int64(s) * int64(s)
	}
	if len(c.Samples) > 0 {
		if avg := float64(totalEnergy) / float64(len(c.Samples)); avg < 1000 {
			warnings = append(warnings, fmt.Sprintf("very low signal level (avg energy %.0f)", avg))
		}
	}
	return warnings
}

// CanonicalSamples resamples the capture to mono float64 at
// core.SampleRate by round-tripping it through a temporary WAV file and
// ffmpeg, the same normalization path uploaded files take.
func (c Capture) CanonicalSamples() ([]float64, error) {
	if len(c.Samples) == 0 {
		return []float64{}, nil
	}

	if err := utils.CreateFolder("tmp"); err != nil {
		return nil, fmt.Errorf("mic: creating tmp folder: %w", err)
	}
	path := filepath.Join("tmp", fmt.Sprintf("capture_%d.wav", time.Now().UnixNano()))

	data := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	if err := fileformat.WriteWavFile(path, data, c.SampleRate, 1, 16); err != nil {
		return nil, err
	}
	defer utils.DeleteFile(path)

	return fileformat.DecodeWAV(path)
}

// Recorder owns a portaudio input device for the life of the process.
// Construct with NewRecorder, release with Close.
type Recorder struct {
	device *portaudio.DeviceInfo
}

// NewRecorder initializes portaudio and selects an input device. An empty
// deviceName picks the system default; otherwise the first input device
// whose name contains deviceName (case-insensitive) wins.
func NewRecorder(deviceName string) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("mic: initializing portaudio: %w", err)
	}

	device, err := selectDevice(deviceName)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return &Recorder{device: device}, nil
}

func selectDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("mic: no default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("mic: listing devices: %w", err)
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("mic: no input device matching %q", name)
}

// Record captures mono audio for the given duration, or until ctx is
// cancelled, whichever comes first. A cancelled context is not an error;
// the samples collected so far are returned.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) (Capture, error) {
	sampleRate := r.device.DefaultSampleRate
	if sampleRate < 44100 {
		sampleRate = 44100
	}

	parameters := portaudio.HighLatencyParameters(r.device, nil)
	parameters.Input.Channels = 1
	parameters.SampleRate = sampleRate
	parameters.FramesPerBuffer = framesPerBuffer

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenStream(parameters, buffer)
	if err != nil {
		return Capture{}, fmt.Errorf("mic: opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return Capture{}, fmt.Errorf("mic: starting stream: %w", err)
	}
	defer stream.Stop()

	fmt.Fprintf(os.Stderr, "🎤 Recording from %s at %.0f Hz...\n", r.device.Name, sampleRate)

	var samples []int16
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		if err := stream.Read(); err != nil {
			return Capture{}, fmt.Errorf("mic: reading stream: %w", err)
		}
		samples = append(samples, buffer...)
	}

	actualRate := int(stream.Info().SampleRate)
	return Capture{Samples: samples, SampleRate: actualRate}, nil
}

// Close releases the portaudio host API. The Recorder is unusable after.
func (r *Recorder) Close() error {
	return portaudio.Terminate()
}

// DefaultQueryWindow is how long the record command listens before
// matching, long enough to accumulate a useful landmark count without
// making the user wait.
const DefaultQueryWindow = 10 * time.Second
