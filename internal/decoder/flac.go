package decoder

import (
	"fmt"
	"io"
	"time"

	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC via github.com/mewkiz/flac.
type FLACDecoder struct {
	BaseDecoder
	stream       *flac.Stream
	reader       io.ReadSeeker
	currentFrame int
	eof          bool
}

func NewFLACDecoder(reader io.ReadSeeker) (*FLACDecoder, error) {
	stream, err := flac.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("flac: parse: %w", err)
	}

	info := stream.Info
	format := Format{
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
		BitDepth:   int(info.BitsPerSample),
	}

	return &FLACDecoder{
		BaseDecoder: BaseDecoder{format: format, sampleCount: int64(info.NSamples)},
		stream:      stream,
		reader:      reader,
	}, nil
}

func (d *FLACDecoder) Decode(buffer []float32) (int, error) {
	if d.eof {
		return 0, ErrEndOfStream
	}

	samplesNeeded := len(buffer) / d.format.Channels
	samplesRead := 0

	for samplesRead < samplesNeeded {
		if d.currentFrame >= len(d.stream.Frames) {
			frame, err := d.stream.ParseNext()
			if err != nil {
				if err == io.EOF {
					d.eof = true
					if samplesRead > 0 {
						return samplesRead, nil
					}
					return 0, ErrEndOfStream
				}
				return samplesRead, fmt.Errorf("flac: parse frame: %w", err)
			}
			d.stream.Frames = append(d.stream.Frames, frame)
		}

		frame := d.stream.Frames[d.currentFrame]
		frameIndex := 0
		for samplesRead < samplesNeeded && frameIndex < len(frame.Subframes[0].Samples) {
			for ch := 0; ch < d.format.Channels; ch++ {
				if ch < len(frame.Subframes) {
					sample := frame.Subframes[ch].Samples[frameIndex]
					buffer[samplesRead*d.format.Channels+ch] = d.normalize(sample)
				}
			}
			frameIndex++
			samplesRead++
		}
		if frameIndex >= len(frame.Subframes[0].Samples) {
			d.currentFrame++
		}
	}

	d.currentSample += int64(samplesRead)
	return samplesRead, nil
}

func (d *FLACDecoder) normalize(sample int32) float32 {
	maxValue := float32(int64(1) << (d.format.BitDepth - 1))
	return float32(sample) / maxValue
}

// Seek reparses the stream from the start and decode-discards up to the
// target position. Naive but correct; FLAC frame-accurate seeking would
// require parsing the seek table, which mewkiz/flac exposes but this
// decoder does not yet use.
func (d *FLACDecoder) Seek(position time.Duration) error {
	targetSample := int64(position.Seconds() * float64(d.format.SampleRate))
	if targetSample < 0 || targetSample > d.sampleCount {
		return fmt.Errorf("flac: seek target out of range")
	}

	if _, err := d.reader.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("flac: seek: %w", err)
	}
	stream, err := flac.Parse(d.reader)
	if err != nil {
		return fmt.Errorf("flac: reparse on seek: %w", err)
	}

	d.stream = stream
	d.currentFrame = 0
	d.currentSample = 0
	d.eof = false

	skip := make([]float32, 1024*d.format.Channels)
	for d.currentSample < targetSample {
		toSkip := targetSample - d.currentSample
		if toSkip > 1024 {
			toSkip = 1024
		}
		if _, err := d.Decode(skip[:toSkip*int64(d.format.Channels)]); err != nil {
			return err
		}
	}
	return nil
}

func (d *FLACDecoder) Close() error {
	if closer, ok := d.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// FLACFactory constructs FLACDecoders.
type FLACFactory struct{}

func (f *FLACFactory) CreateDecoder(reader io.ReadSeeker) (Decoder, error) {
	return NewFLACDecoder(reader)
}

func (f *FLACFactory) SupportsExtension(ext string) bool {
	return ext == ".flac"
}
