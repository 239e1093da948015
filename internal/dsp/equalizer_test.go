package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFlatByDefault(t *testing.T) {
	cfg := NewConfig(44100)
	for _, b := range cfg.Bands {
		assert.Equal(t, 0.0, b.GainDB)
		assert.True(t, b.Valid)
	}
	assert.False(t, cfg.Enabled)
}

func TestHighestBandOmittedAtLowSampleRate(t *testing.T) {
	// Nyquist at 8000 Hz sample rate is 4000; 0.95*4000 = 3800, so the
	// 4k/8k/16k bands must be omitted.
	cfg := NewConfig(8000)
	idx4k, _ := BandIndex("4k")
	idx8k, _ := BandIndex("8k")
	idx16k, _ := BandIndex("16k")
	assert.False(t, cfg.Bands[idx4k].Valid)
	assert.False(t, cfg.Bands[idx8k].Valid)
	assert.False(t, cfg.Bands[idx16k].Valid)
}

func TestSetGainsClipsRange(t *testing.T) {
	cfg := NewConfig(44100)
	err := cfg.SetGains(map[string]float64{"1k": 100, "2k": -100}, true)
	require.NoError(t, err)
	idx1k, _ := BandIndex("1k")
	idx2k, _ := BandIndex("2k")
	assert.Equal(t, 15.0, cfg.Bands[idx1k].GainDB)
	assert.Equal(t, -15.0, cfg.Bands[idx2k].GainDB)
}

func TestSetGainsUnknownBandErrors(t *testing.T) {
	cfg := NewConfig(44100)
	err := cfg.SetGains(map[string]float64{"nope": 1}, true)
	assert.Error(t, err)
}

func TestDisabledProcessorIsNoop(t *testing.T) {
	cfg := NewConfig(44100)
	require.NoError(t, cfg.SetGains(map[string]float64{"1k": 12}, false))
	state := NewState(2)

	block := make([]float32, 256)
	for i := range block {
		block[i] = float32(math.Sin(float64(i)))
	}
	original := append([]float32(nil), block...)

	Process(cfg, state, block)
	assert.Equal(t, original, block)
}

func TestEnabledBoostIncreasesEnergyAtBandFrequency(t *testing.T) {
	const sr = 44100
	const n = 4096
	cfgFlat := NewConfig(sr)
	require.NoError(t, cfgFlat.SetGains(map[string]float64{}, true))

	cfgBoost := NewConfig(sr)
	require.NoError(t, cfgBoost.SetGains(map[string]float64{"1k": 12}, true))

	tone := make([]float32, n)
	for i := range tone {
		tone[i] = float32(0.5 * math.Sin(2*math.Pi*1000*float64(i)/sr))
	}

	flatOut := append([]float32(nil), tone...)
	Process(cfgFlat, NewState(1), flatOut)

	boostOut := append([]float32(nil), tone...)
	Process(cfgBoost, NewState(1), boostOut)

	assert.Greater(t, rms(boostOut), rms(flatOut))
}

func TestStateResetZeroesDelayLines(t *testing.T) {
	cfg := NewConfig(44100)
	require.NoError(t, cfg.SetGains(map[string]float64{"1k": 6}, true))
	state := NewState(1)

	block := make([]float32, 128)
	for i := range block {
		block[i] = float32(math.Sin(float64(i)))
	}
	Process(cfg, state, block)

	idx1k, _ := BandIndex("1k")
	assert.NotEqual(t, sectionState{}, state.sections[0][idx1k])

	state.Reset()
	assert.Equal(t, sectionState{}, state.sections[0][idx1k])
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	cfg := NewConfig(44100)
	require.NoError(t, cfg.SetGains(map[string]float64{"1k": 6}, true))
	state := NewState(1)

	block := make([]float32, 128)
	for i := range block {
		block[i] = float32(math.Sin(float64(i)))
	}
	Process(cfg, state, block)

	clone := state.Clone()
	idx1k, _ := BandIndex("1k")
	assert.Equal(t, state.sections[0][idx1k], clone.sections[0][idx1k])

	more := make([]float32, 128)
	Process(cfg, clone, more)
	assert.NotEqual(t, state.sections[0][idx1k], clone.sections[0][idx1k])
}

func TestAssignFromCopiesRegistersInPlace(t *testing.T) {
	state := NewState(1)
	clone := state.Clone()

	block := make([]float32, 64)
	cfg := NewConfig(44100)
	require.NoError(t, cfg.SetGains(map[string]float64{"1k": 6}, true))
	Process(cfg, clone, block)

	state.AssignFrom(clone)
	idx1k, _ := BandIndex("1k")
	assert.Equal(t, clone.sections[0][idx1k], state.sections[0][idx1k])
}

func rms(samples []float32) float64 {
	var sumSq float64
	for _, s := range samples {
		sumSq += float64(s) * float64(s)
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}
