package glow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBase_ZeroAtStart(t *testing.T) {
	assert.Equal(t, 0.0, Base(0, 10*time.Minute))
}

func TestBase_ZeroIntended(t *testing.T) {
	assert.Equal(t, 0.0, Base(time.Minute, 0))
}

func TestBase_NonDecreasing(t *testing.T) {
	intended := 5 * time.Minute
	prev := -1.0
	for elapsed := time.Duration(0); elapsed <= 15*time.Minute; elapsed += 10 * time.Second {
		v := Base(elapsed, intended)
		assert.GreaterOrEqual(t, v, prev, "elapsed %s", elapsed)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		prev = v
	}
}

func TestBase_KnownValues(t *testing.T) {
	// At elapsed == intended, 1 - e^-2 ~= 0.8647
	assert.InDelta(t, 0.8647, Base(5*time.Minute, 5*time.Minute), 0.001)
	// At half the intended duration, 1 - e^-1 ~= 0.6321
	assert.InDelta(t, 0.6321, Base(150*time.Second, 5*time.Minute), 0.001)
}

func TestIntensity_Bounded(t *testing.T) {
	intended := 2 * time.Minute
	for elapsed := time.Duration(0); elapsed <= 10*time.Minute; elapsed += 250 * time.Millisecond {
		v := Intensity(elapsed, intended)
		assert.GreaterOrEqual(t, v, 0.0, "elapsed %s", elapsed)
		assert.LessOrEqual(t, v, 1.0, "elapsed %s", elapsed)
	}
}

func TestIntensity_OscillatesAroundBase(t *testing.T) {
	intended := 10 * time.Minute
	elapsed := 5 * time.Minute
	base := Base(elapsed, intended)
	v := Intensity(elapsed, intended)
	assert.InDelta(t, base, v, breatheAmplitude+0.0001)
}
