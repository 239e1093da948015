package decoder

import (
	"fmt"
	"io"
	"time"

	"github.com/audioengine/audioengine/internal/wavcodec"
)

// WAVDecoder decodes RIFF/WAVE files (float32 IEEE or 16-bit PCM) via the
// shared wavcodec package. It also serves as the sink format for the
// FFmpeg subprocess fallback, which re-encodes unrecognized formats to an
// in-memory float32 WAV before handing it to this decoder.
type WAVDecoder struct {
	BaseDecoder
	closer  io.Closer
	samples []float32
	pos     int64 // frame index
}

func NewWAVDecoder(reader io.ReadSeeker) (*WAVDecoder, error) {
	info, err := wavcodec.ReadFloat(reader)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	if info.Channels <= 0 {
		return nil, fmt.Errorf("wav: invalid channel count %d", info.Channels)
	}

	format := Format{SampleRate: info.SampleRate, Channels: info.Channels, BitDepth: 32}
	frameCount := int64(len(info.Samples) / info.Channels)

	d := &WAVDecoder{
		BaseDecoder: BaseDecoder{format: format, sampleCount: frameCount},
		samples:     info.Samples,
	}
	if c, ok := reader.(io.Closer); ok {
		d.closer = c
	}
	return d, nil
}

func (d *WAVDecoder) Decode(buffer []float32) (int, error) {
	channels := d.format.Channels
	totalFrames := int64(len(d.samples) / channels)
	if d.pos >= totalFrames {
		return 0, ErrEndOfStream
	}

	requestedFrames := int64(len(buffer) / channels)
	remaining := totalFrames - d.pos
	frames := requestedFrames
	if frames > remaining {
		frames = remaining
	}

	start := d.pos * int64(channels)
	copy(buffer, d.samples[start:start+frames*int64(channels)])
	d.pos += frames
	d.currentSample = d.pos
	return int(frames), nil
}

func (d *WAVDecoder) Seek(position time.Duration) error {
	targetFrame := int64(position.Seconds() * float64(d.format.SampleRate))
	totalFrames := int64(len(d.samples) / d.format.Channels)
	if targetFrame < 0 {
		targetFrame = 0
	}
	if targetFrame > totalFrames {
		targetFrame = totalFrames
	}
	d.pos = targetFrame
	d.currentSample = targetFrame
	return nil
}

func (d *WAVDecoder) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// WAVFactory constructs WAVDecoders.
type WAVFactory struct{}

func (f *WAVFactory) CreateDecoder(reader io.ReadSeeker) (Decoder, error) {
	return NewWAVDecoder(reader)
}

func (f *WAVFactory) SupportsExtension(ext string) bool {
	return ext == ".wav"
}
