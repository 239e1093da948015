package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupedSplitsByHostAPI(t *testing.T) {
	m := NewManager()
	wasapi, other := m.Grouped()

	assert.NotEmpty(t, wasapi)
	assert.NotEmpty(t, other)
	for _, d := range wasapi {
		assert.True(t, d.ExclusiveCapable())
	}
	for _, d := range other {
		assert.False(t, d.ExclusiveCapable())
	}
}

func TestByIDFindsKnownDevice(t *testing.T) {
	m := NewManager()
	d, ok := m.ByID(1)
	assert.True(t, ok)
	assert.Equal(t, "Default Output Device", d.Name)
}

func TestByIDMissesUnknownDevice(t *testing.T) {
	m := NewManager()
	_, ok := m.ByID(9999)
	assert.False(t, ok)
}

func TestProbeDefaultSampleRateOnlyForExclusiveCapable(t *testing.T) {
	m := NewManager()
	wasapi, other := m.Grouped()

	sr, ok := m.ProbeDefaultSampleRate(wasapi[0])
	assert.True(t, ok)
	assert.Equal(t, 48000, sr)

	_, ok = m.ProbeDefaultSampleRate(other[0])
	assert.False(t, ok)
}
