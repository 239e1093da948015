package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sineFrame(freq float64, sampleRate, channels int) []float32 {
	frame := make([]float32, WindowSize*channels)
	for i := 0; i < WindowSize; i++ {
		v := float32(0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for ch := 0; ch < channels; ch++ {
			frame[i*channels+ch] = v
		}
	}
	return frame
}

func TestAnalyzeOutputShapeAndRange(t *testing.T) {
	a := New(44100)
	frame := sineFrame(1000, 44100, 2)
	out := a.Analyze(frame, 2)
	assert.Len(t, out, NumBins)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestAnalyzeAllZeroInputYieldsAllZeroOutput(t *testing.T) {
	a := New(44100)
	frame := make([]float32, WindowSize*2)
	out := a.Analyze(frame, 2)
	for _, v := range out {
		assert.Equal(t, float32(0), v)
	}
}

func TestAnalyzeDegenerateSampleRateYieldsAllZero(t *testing.T) {
	a := New(30) // fs/2 = 15 <= 20Hz
	frame := sineFrame(10, 30, 1)
	out := a.Analyze(frame, 1)
	for _, v := range out {
		assert.Equal(t, float32(0), v)
	}
}

func TestAnalyzeShortBufferIsZeroPadded(t *testing.T) {
	a := New(44100)
	frame := sineFrame(1000, 44100, 1)[:WindowSize/2]
	assert.NotPanics(t, func() {
		out := a.Analyze(frame, 1)
		assert.Len(t, out, NumBins)
	})
}

func TestAnalyzeBoostsBinContainingToneFrequency(t *testing.T) {
	a := New(44100)
	loud := a.Analyze(sineFrame(1000, 44100, 1), 1)
	quiet := a.Analyze(make([]float32, WindowSize), 1)

	maxLoud := float32(0)
	for _, v := range loud {
		if v > maxLoud {
			maxLoud = v
		}
	}
	maxQuiet := float32(0)
	for _, v := range quiet {
		if v > maxQuiet {
			maxQuiet = v
		}
	}
	assert.Greater(t, maxLoud, maxQuiet)
}
