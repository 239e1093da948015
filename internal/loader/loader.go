// Package loader implements the Loader (C5): orchestrates decode →
// channel detection → target-rate decision → Resample Cache consult →
// ready PCM, per spec.md §4.5.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/audioengine/audioengine/internal/cache"
	"github.com/audioengine/audioengine/internal/decoder"
	"github.com/audioengine/audioengine/internal/output"
	"github.com/audioengine/audioengine/internal/resample"
)

const decodeChunkFrames = 8192

// ErrDecode and ErrResample classify a Load failure's stage, so callers
// can map them to distinct error kinds (§7) without string matching.
var (
	ErrDecode   = errors.New("loader: decode stage failed")
	ErrResample = errors.New("loader: resample stage failed")
)

// Options configures one Load call's target-rate decision (§4.5 step 4).
type Options struct {
	// TargetSampleRateOverride is the transport's target-samplerate
	// override, or 0 if unset.
	TargetSampleRateOverride int
	Exclusive                bool
	Device                   output.Device
}

// Result is a fully decoded, channel-aware PCM buffer ready to become the
// Playback Engine's Track Buffer.
type Result struct {
	SampleRate int
	Channels   int
	Frames     int64
	Samples    []float32 // interleaved
}

// Loader ties the Decoder Registry, Resample Cache and resampler
// together.
type Loader struct {
	registry *decoder.Registry
	cache    *cache.Cache
	devices  *output.Manager
	log      zerolog.Logger
}

func New(registry *decoder.Registry, c *cache.Cache, devices *output.Manager, log zerolog.Logger) *Loader {
	return &Loader{registry: registry, cache: c, devices: devices, log: log}
}

// Load decodes path and returns PCM at the decided target sample rate,
// consulting the Resample Cache when resampling is required.
func (l *Loader) Load(path string, opts Options) (Result, error) {
	dec, err := l.registry.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer dec.Close()

	format := dec.Format()
	channels := format.Channels
	nativeSR := format.SampleRate
	if channels < 1 || nativeSR <= 0 {
		return Result{}, fmt.Errorf("%w: invalid decoded format sr=%d channels=%d", ErrDecode, nativeSR, channels)
	}

	samples, err := decodeAll(dec, channels)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	targetSR := l.resolveTargetSampleRate(nativeSR, opts)

	if targetSR == nativeSR {
		return Result{
			SampleRate: nativeSR,
			Channels:   channels,
			Frames:     int64(len(samples) / channels),
			Samples:    samples,
		}, nil
	}

	resampled, err := l.resampleWithCache(path, samples, channels, nativeSR, targetSR)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrResample, err)
	}

	return Result{
		SampleRate: targetSR,
		Channels:   channels,
		Frames:     int64(len(resampled) / channels),
		Samples:    resampled,
	}, nil
}

// resolveTargetSampleRate implements §4.5 step 4 exactly: start from
// native, apply the override only if it is set and greater than native,
// then apply the exclusive-mode device probe, which may override it
// again.
func (l *Loader) resolveTargetSampleRate(nativeSR int, opts Options) int {
	targetSR := nativeSR

	if opts.TargetSampleRateOverride > 0 && opts.TargetSampleRateOverride > nativeSR {
		targetSR = opts.TargetSampleRateOverride
	}

	if opts.Exclusive && l.devices != nil {
		if sr, ok := l.devices.ProbeDefaultSampleRate(opts.Device); ok {
			targetSR = sr
		}
	}

	return targetSR
}

func (l *Loader) resampleWithCache(path string, native []float32, channels, nativeSR, targetSR int) ([]float32, error) {
	info, statErr := os.Stat(path)
	cacheable := statErr == nil && l.cache.Enabled()

	var digest string
	if cacheable {
		keyPath := path
		if abs, err := filepath.Abs(path); err == nil {
			keyPath = abs
		}
		digest = cache.Key(keyPath, info.ModTime().UnixNano(), info.Size(), targetSR, channels)
		if entry, ok := l.cache.Load(digest); ok {
			return entry.Samples, nil
		}
	}

	resampled, err := resample.Linear(native, channels, nativeSR, targetSR)
	if err != nil {
		return nil, err
	}

	if cacheable {
		l.cache.Store(digest, resampled, targetSR, channels)
	}

	return resampled, nil
}

// decodeAll drains dec into a single flat, interleaved sample slice.
func decodeAll(dec decoder.Decoder, channels int) ([]float32, error) {
	var out []float32
	chunk := make([]float32, decodeChunkFrames*channels)

	for {
		frames, err := dec.Decode(chunk)
		if frames > 0 {
			out = append(out, chunk[:frames*channels]...)
		}
		if err != nil {
			if err == decoder.ErrEndOfStream {
				return out, nil
			}
			return nil, err
		}
		if frames == 0 {
			return out, nil
		}
	}
}
