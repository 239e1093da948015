package decoder

import (
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MP3 via github.com/hajimehoshi/go-mp3, which always
// produces 16-bit stereo PCM regardless of source channel layout.
type MP3Decoder struct {
	BaseDecoder
	reader  io.ReadSeeker
	decoder *mp3.Decoder
	eof     bool
}

func NewMP3Decoder(reader io.ReadSeeker) (*MP3Decoder, error) {
	dec, err := mp3.NewDecoder(reader)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	format := Format{SampleRate: dec.SampleRate(), Channels: 2, BitDepth: 16}
	sampleCount := dec.Length() / 4 // 2 channels * 2 bytes

	return &MP3Decoder{
		BaseDecoder: BaseDecoder{format: format, sampleCount: sampleCount},
		reader:      reader,
		decoder:     dec,
	}, nil
}

func (d *MP3Decoder) Decode(buffer []float32) (int, error) {
	if d.eof {
		return 0, ErrEndOfStream
	}
	raw := make([]byte, len(buffer)*2)
	n, err := d.decoder.Read(raw)
	if n == 0 && err != nil {
		if err == io.EOF {
			d.eof = true
			return 0, ErrEndOfStream
		}
		return 0, fmt.Errorf("mp3: decode: %w", err)
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		lo := int16(raw[i*2]) | int16(raw[i*2+1])<<8
		buffer[i] = float32(lo) / 32768.0
	}
	frames := samples / d.format.Channels
	d.currentSample += int64(frames)
	if err == io.EOF {
		d.eof = true
	}
	return frames, nil
}

func (d *MP3Decoder) Seek(position time.Duration) error {
	targetSample := int64(position.Seconds() * float64(d.format.SampleRate))
	bytePos := targetSample * 4 // offset in the decoded 16-bit stereo PCM stream
	if _, err := d.decoder.Seek(bytePos, io.SeekStart); err != nil {
		return fmt.Errorf("mp3: seek: %w", err)
	}
	d.currentSample = targetSample
	d.eof = false
	return nil
}

func (d *MP3Decoder) Close() error {
	if closer, ok := d.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// MP3Factory constructs MP3Decoders.
type MP3Factory struct{}

func (f *MP3Factory) CreateDecoder(reader io.ReadSeeker) (Decoder, error) {
	return NewMP3Decoder(reader)
}

func (f *MP3Factory) SupportsExtension(ext string) bool {
	return ext == ".mp3"
}
