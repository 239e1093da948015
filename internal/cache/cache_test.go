package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestCacheDisabledWhenDirEmpty(t *testing.T) {
	c := New("", testLogger())
	assert.False(t, c.Enabled())
	_, ok := c.Load("anything")
	assert.False(t, ok)
}

func TestCacheStoreThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, testLogger())

	samples := []float32{0.1, -0.2, 0.3, -0.4}
	digest := Key("/music/a.flac", 123, 456, 48000, 2)

	c.Store(digest, samples, 48000, 2)

	entry, ok := c.Load(digest)
	require.True(t, ok)
	assert.Equal(t, 48000, entry.SampleRate)
	assert.Equal(t, 2, entry.Channels)
	assert.Equal(t, samples, entry.Samples)
}

func TestCacheLoadMissingEntryMisses(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, testLogger())
	_, ok := c.Load("0123456789abcdef0123456789abcdef")
	assert.False(t, ok)
}

func TestCacheLoadCorruptEntryMissesAndDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, testLogger())
	digest := "deadbeefdeadbeefdeadbeefdeadbeef"
	require.NoError(t, os.WriteFile(filepath.Join(dir, digest+".wav"), []byte("not a wav file"), 0o644))

	_, ok := c.Load(digest)
	assert.False(t, ok)
}

func TestKeyChangesWithMtime(t *testing.T) {
	k1 := Key("/music/a.flac", 1, 100, 44100, 2)
	k2 := Key("/music/a.flac", 2, 100, 44100, 2)
	assert.NotEqual(t, k1, k2)
}

func TestKeyStableForSameInputs(t *testing.T) {
	k1 := Key("/music/a.flac", 1, 100, 44100, 2)
	k2 := Key("/music/a.flac", 1, 100, 44100, 2)
	assert.Equal(t, k1, k2)
}
