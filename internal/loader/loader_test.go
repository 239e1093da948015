package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioengine/audioengine/internal/cache"
	"github.com/audioengine/audioengine/internal/decoder"
	"github.com/audioengine/audioengine/internal/output"
	"github.com/audioengine/audioengine/internal/wavcodec"
)

func writeTestTone(t *testing.T, path string, sampleRate, channels int, frames int) {
	t.Helper()
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
}

func TestLoadNativeRateSkipsCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeTestTone(t, path, 44100, 2, 1000)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cache"), 0o755))

	l := New(decoder.NewRegistry(), cache.New(filepath.Join(dir, "cache"), zerolog.Nop()), output.NewManager(), zerolog.Nop())

	res, err := l.Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 44100, res.SampleRate)
	assert.Equal(t, 2, res.Channels)
	assert.Equal(t, int64(1000), res.Frames)

	entries, err := os.ReadDir(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadWithOverrideResamplesAndCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeTestTone(t, path, 44100, 2, 1000)

	cacheDir := filepath.Join(dir, "cache")
	l := New(decoder.NewRegistry(), cache.New(cacheDir, zerolog.Nop()), output.NewManager(), zerolog.Nop())

	res, err := l.Load(path, Options{TargetSampleRateOverride: 48000})
	require.NoError(t, err)
	assert.Equal(t, 48000, res.SampleRate)
	assert.Equal(t, 2, res.Channels)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadOverrideBelowNativeIsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeTestTone(t, path, 44100, 2, 1000)

	l := New(decoder.NewRegistry(), cache.New(filepath.Join(dir, "cache"), zerolog.Nop()), output.NewManager(), zerolog.Nop())

	res, err := l.Load(path, Options{TargetSampleRateOverride: 22050})
	require.NoError(t, err)
	assert.Equal(t, 44100, res.SampleRate)
}

func TestLoadMissingFileErrors(t *testing.T) {
	l := New(decoder.NewRegistry(), cache.New("", zerolog.Nop()), output.NewManager(), zerolog.Nop())
	_, err := l.Load("/nonexistent/track.wav", Options{})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}
