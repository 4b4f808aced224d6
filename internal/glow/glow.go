// Package glow derives the visual intensity of the prayer screen from
// elapsed time. Pure functions, recomputed on every tick.
package glow

import (
	"math"
	"time"
)

// breathePeriod is the period of the breathing oscillation.
const breathePeriod = 4 * time.Second

// breatheAmplitude bounds the additive oscillation term.
const breatheAmplitude = 0.05

// Base returns the monotone intensity component: 1 - e^(-2*elapsed/intended),
// clamped to [0,1]. Zero at elapsed = 0, approaching 1 as the session runs
// past its intended duration.
func Base(elapsed, intended time.Duration) float64 {
	if intended <= 0 || elapsed <= 0 {
		return 0
	}
	v := 1 - math.Exp(-2*float64(elapsed)/float64(intended))
	return clamp(v)
}

// Intensity returns the displayed intensity: the monotone base plus a small
// sinusoidal breathing term, clamped to [0,1].
func Intensity(elapsed, intended time.Duration) float64 {
	base := Base(elapsed, intended)
	breathe := breatheAmplitude * math.Sin(2*math.Pi*float64(elapsed)/float64(breathePeriod))
	return clamp(base + breathe)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
