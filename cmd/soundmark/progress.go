package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// scoreCap is the raw vote count treated as full confidence. The core
// returns unnormalized scores; this display-layer cap turns them into a
// bounded fraction for the bar.
const scoreCap = 150

// confidence maps a raw match score to [0, 1].
func confidence(score int) float64 {
	c := float64(score) / scoreCap
	if c > 1 {
		c = 1
	}
	return c
}

// renderConfidence draws a one-shot confidence bar for a match score.
func renderConfidence(score int) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("🎯 Confidence"),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
	)
	bar.Set(int(confidence(score) * 100))
	fmt.Println()
}
