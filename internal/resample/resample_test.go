package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearSameRateIsIdentity(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3, 0.4}
	out, err := Linear(in, 2, 44100, 44100)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLinearUpsampleDoublesFrameCount(t *testing.T) {
	in := make([]float32, 100) // 100 mono frames
	for i := range in {
		in[i] = float32(math.Sin(float64(i)))
	}
	out, err := Linear(in, 1, 44100, 88200)
	require.NoError(t, err)
	assert.InDelta(t, 200, len(out), 2)
}

func TestLinearDownsampleHalvesFrameCount(t *testing.T) {
	in := make([]float32, 200)
	out, err := Linear(in, 1, 88200, 44100)
	require.NoError(t, err)
	assert.InDelta(t, 100, len(out), 2)
}

func TestLinearRejectsInvalidInputs(t *testing.T) {
	_, err := Linear([]float32{1, 2}, 0, 44100, 48000)
	assert.Error(t, err)

	_, err = Linear([]float32{1, 2}, 1, 0, 48000)
	assert.Error(t, err)
}

func TestLinearPreservesChannelInterleaving(t *testing.T) {
	in := []float32{0, 1, 1, 0, 0, 1, 1, 0} // 4 stereo frames alternating
	out, err := Linear(in, 2, 44100, 44100)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
