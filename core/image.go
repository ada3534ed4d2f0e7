package core

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// ConstellationImage renders a peak set as a scatter of white dots on a
// black background, time along the horizontal axis and frequency along
// the vertical axis (low frequencies at the bottom, matching a
// conventional spectrogram plot rather than image row order). It is a
// diagnostic, not part of the matching pipeline: useful for a human
// eyeballing whether two recordings produced visually similar
// constellations, never consulted by Query.
func ConstellationImage(peaks []Peak, width, height int, outputPath string) error {
	if len(peaks) == 0 {
		return &InputError{Reason: "ConstellationImage: peaks must be non-empty"}
	}

	maxTime := peaks[0].TimeSeconds
	for _, p := range peaks {
		if p.TimeSeconds > maxTime {
			maxTime = p.TimeSeconds
		}
	}
	if maxTime == 0 {
		maxTime = 1
	}
	const maxFreqHz = float64(NyquistBin) * FreqResolution

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Black)
		}
	}

	for _, p := range peaks {
		x := int(p.TimeSeconds / maxTime * float64(width-1))
		y := height - 1 - int(float64(p.FrequencyHz)/maxFreqHz*float64(height-1))
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		img.Set(x, y, color.White)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
