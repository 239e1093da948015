// Package decoder implements the Decoder Registry (C9): extension-dispatch
// to concrete decoders plus a subprocess fallback for unrecognized formats.
// Per spec.md's Non-goal on metadata extraction, decoders expose only
// Format() (sample rate, channels, bit depth), never tag/ID3/picture data.
package decoder

import (
	"errors"
	"io"
	"time"
)

var (
	ErrUnsupportedFormat = errors.New("decoder: unsupported audio format")
	ErrEndOfStream       = errors.New("decoder: end of stream")
	ErrSeekNotSupported  = errors.New("decoder: seek not supported")
)

// Format describes a decoded PCM stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Decoder decodes interleaved float32 PCM from a single audio file.
type Decoder interface {
	// Decode reads interleaved samples into buffer, returning frames read
	// per channel. Returns ErrEndOfStream with 0 frames when exhausted.
	Decode(buffer []float32) (int, error)

	Format() Format

	// SampleCount returns the total number of frames, if known.
	SampleCount() int64

	// Seek seeks to an absolute playback position.
	Seek(position time.Duration) error

	Close() error
}

// BaseDecoder holds fields shared by all concrete decoders.
type BaseDecoder struct {
	format        Format
	sampleCount   int64
	currentSample int64
}

func (b *BaseDecoder) Format() Format      { return b.format }
func (b *BaseDecoder) SampleCount() int64  { return b.sampleCount }
func (b *BaseDecoder) Duration(fs int) time.Duration {
	if fs <= 0 {
		return 0
	}
	return time.Duration(b.sampleCount) * time.Second / time.Duration(fs)
}

// Factory constructs decoders for one format.
type Factory interface {
	CreateDecoder(reader io.ReadSeeker) (Decoder, error)
	SupportsExtension(ext string) bool
}
