package engine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioengine/audioengine/internal/cache"
	"github.com/audioengine/audioengine/internal/decoder"
	"github.com/audioengine/audioengine/internal/loader"
	"github.com/audioengine/audioengine/internal/output"
	"github.com/audioengine/audioengine/internal/wavcodec"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	devices := output.NewManager()
	ld := loader.New(decoder.NewRegistry(), cache.New(filepath.Join(dir, "cache"), zerolog.Nop()), devices, zerolog.Nop())
	e := New(devices, ld, zerolog.Nop())
	t.Cleanup(func() { e.Close() })
	return e
}

func writeTestTone(t *testing.T, sampleRate, channels, frames int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	samples := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = 0.5
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, wavcodec.WriteFloat(f, samples, sampleRate, channels))
	return path
}

func TestLoadTransitionsEmptyToStopped(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 1000)

	require.NoError(t, e.Load(path))
	snap := e.GetState()
	assert.False(t, snap.IsPlaying)
	assert.False(t, snap.IsPaused)
	assert.Equal(t, path, snap.FilePath)
}

func TestLoadMissingFileLeavesEngineEmpty(t *testing.T) {
	e := newTestEngine(t)
	err := e.Load("/nonexistent/nope.wav")
	assert.Error(t, err)

	snap := e.GetState()
	assert.Equal(t, "", snap.FilePath)
}

func TestPlayOnEmptyEngineIsNoopWithError(t *testing.T) {
	e := newTestEngine(t)
	err := e.Play()
	assert.Error(t, err)
	assert.Equal(t, Empty, e.state)
}

func TestPauseBeforePlayingIsNoop(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 1000)
	require.NoError(t, e.Load(path))

	require.NoError(t, e.Pause())
	assert.Equal(t, Stopped, e.state)
}

func TestStopResetsPositionAndState(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 1000)
	require.NoError(t, e.Load(path))

	e.mu.Lock()
	e.position = 500
	e.state = Paused
	e.mu.Unlock()

	require.NoError(t, e.Stop())
	snap := e.GetState()
	assert.Equal(t, 0.0, snap.CurrentTimeSeconds)
	assert.False(t, snap.IsPlaying)
	assert.False(t, snap.IsPaused)
}

func TestSeekWithinRangeUpdatesPosition(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 44100) // 1 second
	require.NoError(t, e.Load(path))

	require.NoError(t, e.Seek(0.5))
	snap := e.GetState()
	assert.InDelta(t, 0.5, snap.CurrentTimeSeconds, 0.001)
}

func TestSeekOutOfRangeIsRejected(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 44100)
	require.NoError(t, e.Load(path))

	err := e.Seek(10.0)
	assert.Error(t, err)
}

func TestSeekNegativeIsRejected(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 44100)
	require.NoError(t, e.Load(path))

	err := e.Seek(-1.0)
	assert.Error(t, err)
}

func TestSeekWithoutTrackIsRejected(t *testing.T) {
	e := newTestEngine(t)
	err := e.Seek(1.0)
	assert.Error(t, err)
}

func TestSetVolumeClampsToUnitRange(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetVolume(2.0))
	assert.Equal(t, 1.0, e.GetState().Volume)

	require.NoError(t, e.SetVolume(-1.0))
	assert.Equal(t, 0.0, e.GetState().Volume)
}

func TestSetEQUnknownBandRejected(t *testing.T) {
	e := newTestEngine(t)
	err := e.SetEQ(map[string]float64{"nope": 1}, true)
	assert.Error(t, err)
}

func TestSetEQValidBandApplies(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetEQ(map[string]float64{"1k": 6}, true))
	assert.Equal(t, 6.0, e.eqConfig.Gains()["1k"])
	assert.True(t, e.eqConfig.Enabled)
}

func TestReadWithNoTrackProducesSilence(t *testing.T) {
	e := newTestEngine(t)
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = 0xFF
	}
	n, err := e.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestReadAdvancesPositionWhenPlaying(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 44100)
	require.NoError(t, e.Load(path))

	e.mu.Lock()
	e.state = Playing
	e.mu.Unlock()

	buf := make([]byte, 100*2*bytesPerSample) // 100 frames, 2 channels
	n, err := e.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	e.mu.Lock()
	pos := e.position
	e.mu.Unlock()
	assert.EqualValues(t, 100, pos)
}

func TestReadSignalsEndOfStreamAndStops(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 50)
	require.NoError(t, e.Load(path))

	e.mu.Lock()
	e.state = Playing
	e.position = 40
	e.mu.Unlock()

	buf := make([]byte, 100*2*bytesPerSample) // request spans past end
	n, err := e.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	e.mu.Lock()
	state := e.state
	pos := e.position
	e.mu.Unlock()
	assert.Equal(t, Stopped, state)
	assert.EqualValues(t, 0, pos)

	select {
	case <-e.eosSignal:
	default:
		t.Fatal("expected end-of-stream signal")
	}
}

func TestConfigureUpsamplingRemapsPositionProportionally(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 44100) // 1 second native
	require.NoError(t, e.Load(path))
	require.NoError(t, e.Seek(0.5))

	target := 88200
	require.NoError(t, e.ConfigureUpsampling(&target))

	snap := e.GetState()
	assert.InDelta(t, 0.5, snap.CurrentTimeSeconds, 0.01)
}

func TestGetStateReflectsLoadedTrackDuration(t *testing.T) {
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 44100)
	require.NoError(t, e.Load(path))

	snap := e.GetState()
	assert.InDelta(t, 1.0, snap.DurationSeconds, 0.001)
}

// TestVolumeClampBoundsCallbackOutput is §8 scenario 3's callback-level
// half: requesting volume 2.0 clamps to 1.0, and Read never emits a
// sample whose magnitude exceeds the pre-clamp envelope (here, the
// constant 0.5 amplitude writeTestTone produces).
func TestVolumeClampBoundsCallbackOutput(t *testing.T) {
	const amplitude = 0.5
	e := newTestEngine(t)
	path := writeTestTone(t, 44100, 2, 44100)
	require.NoError(t, e.Load(path))
	require.NoError(t, e.SetVolume(2.0))
	assert.Equal(t, 1.0, e.GetState().Volume)

	e.mu.Lock()
	e.state = Playing
	e.mu.Unlock()

	buf := make([]byte, 256*2*bytesPerSample)
	n, err := e.Read(buf)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)

	for i := 0; i+bytesPerSample-1 < len(buf); i += bytesPerSample {
		bits := uint32(buf[i]) | uint32(buf[i+1])<<8 | uint32(buf[i+2])<<16 | uint32(buf[i+3])<<24
		sample := math.Float32frombits(bits)
		assert.LessOrEqual(t, math.Abs(float64(sample)), amplitude+1e-4)
	}
}
