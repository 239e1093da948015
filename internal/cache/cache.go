package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/audioengine/audioengine/internal/wavcodec"
)

// Entry is a resolved cache lookup: either a hit carrying samples, or a
// miss.
type Entry struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Cache implements the Resample Cache (C4). A Cache constructed with an
// empty dir, like a nil *Cache, bypasses caching entirely, per spec.md §4.4.
type Cache struct {
	dir string
	log zerolog.Logger
}

// New builds a Cache rooted at dir. An empty dir disables caching: Load
// always misses and Store is a no-op.
func New(dir string, log zerolog.Logger) *Cache {
	return &Cache{dir: dir, log: log}
}

// Enabled reports whether a cache directory is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.dir != ""
}

// Key builds the cache key digest for (path, mtime_ns, size, target_sr,
// channels), per spec.md §4.4.
func Key(path string, mtimeNs int64, size int64, targetSR, channels int) string {
	raw := fmt.Sprintf("%s|%d|%d|sr=%d|fmt=f32le|ch=%d", path, mtimeNs, size, targetSR, channels)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) pathFor(digest string) string {
	return filepath.Join(c.dir, digest+".wav")
}

// Load reads a cache entry by digest. Returns ok=false on any miss or
// decode failure (corrupt entries are treated as misses, per the Data
// Model's "overwritten silently on next load" invariant).
func (c *Cache) Load(digest string) (Entry, bool) {
	if !c.Enabled() {
		return Entry{}, false
	}
	f, err := os.Open(c.pathFor(digest))
	if err != nil {
		return Entry{}, false
	}
	defer f.Close()

	info, err := wavcodec.ReadFloat(f)
	if err != nil {
		c.log.Warn().Err(err).Str("digest", digest).Msg("resample cache: corrupt entry, treating as miss")
		return Entry{}, false
	}
	return Entry{SampleRate: info.SampleRate, Channels: info.Channels, Samples: info.Samples}, true
}

// Store persists samples under digest. Best-effort: write failures are
// logged and swallowed, never surfaced to the loader.
func (c *Cache) Store(digest string, samples []float32, sampleRate, channels int) {
	if !c.Enabled() {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.log.Warn().Err(err).Msg("resample cache: failed to create cache dir")
		return
	}

	tmpPath := c.pathFor(digest) + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		c.log.Warn().Err(err).Str("digest", digest).Msg("resample cache: failed to create entry")
		return
	}

	if err := wavcodec.WriteFloat(f, samples, sampleRate, channels); err != nil {
		f.Close()
		os.Remove(tmpPath)
		c.log.Warn().Err(err).Str("digest", digest).Msg("resample cache: failed to write entry")
		return
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		c.log.Warn().Err(err).Str("digest", digest).Msg("resample cache: failed to close entry")
		return
	}
	if err := os.Rename(tmpPath, c.pathFor(digest)); err != nil {
		os.Remove(tmpPath)
		c.log.Warn().Err(err).Str("digest", digest).Msg("resample cache: failed to finalize entry")
	}
}
