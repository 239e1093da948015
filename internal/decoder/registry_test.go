package decoder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioengine/audioengine/internal/wavcodec"
)

func writeTestWAV(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	samples := make([]float32, 100*2)
	require.NoError(t, wavcodec.WriteFloat(f, samples, 44100, 2))
}

func TestRegistryOpenDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeTestWAV(t, path)

	r := NewRegistry()
	dec, err := r.Open(path)
	require.NoError(t, err)
	defer dec.Close()

	assert.Equal(t, 44100, dec.Format().SampleRate)
	assert.Equal(t, 2, dec.Format().Channels)
}

func TestRegistryOpenMissingFileErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Open("/nonexistent/path/track.wav")
	assert.Error(t, err)
}

func TestRegistryOpenUnsupportedExtensionFallsBackToFFmpeg(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.ogg")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))

	r := NewRegistry()
	r.ffmpegPath = "definitely-not-a-real-binary-xyz"
	_, err := r.Open(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
