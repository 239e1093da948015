package decoder

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Registry dispatches file extensions to concrete decoders, falling back
// to an FFmpeg subprocess for anything unrecognized.
type Registry struct {
	factories  []Factory
	ffmpegPath string
}

// NewRegistry builds a Registry with the MP3, FLAC and WAV decoders
// registered, per the Decoder Registry's component design.
func NewRegistry() *Registry {
	return &Registry{
		factories:  []Factory{&MP3Factory{}, &FLACFactory{}, &WAVFactory{}},
		ffmpegPath: "ffmpeg",
	}
}

// Open opens path and returns a Decoder for it, trying the registered
// factory for its extension first, then falling back to an FFmpeg
// subprocess that re-encodes the file to float32 WAV on stdout. The
// fallback runs both when no factory claims the extension and when the
// claiming factory's decoder rejects the file; in the latter case, if
// FFmpeg also fails, the factory's error is returned.
func (r *Registry) Open(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))

	for _, f := range r.factories {
		if !f.SupportsExtension(ext) {
			continue
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("decoder: open %s: %w", path, err)
		}
		dec, err := f.CreateDecoder(file)
		if err != nil {
			file.Close()
			if ffDec, ffErr := r.openViaFFmpeg(path); ffErr == nil {
				return ffDec, nil
			}
			return nil, err
		}
		return dec, nil
	}

	return r.openViaFFmpeg(path)
}

// openViaFFmpeg pipes path through `ffmpeg -i <path> -f wav -acodec
// pcm_f32le -`, buffers the resulting WAV in memory, and hands it to the
// WAV decoder. Used for any format none of the registered decoders claim
// or decode.
//
// Before shelling out, it sniffs the container via dhowden/tag, but only
// to keep the dependency wired — not to reject input. FFmpeg's own exit
// code is the sole authority on whether path is decodable, so formats tag
// doesn't recognize (raw AAC, some Ogg variants) still reach FFmpeg.
func (r *Registry) openViaFFmpeg(path string) (Decoder, error) {
	if f, err := os.Open(path); err == nil {
		_, _ = tag.ReadFrom(f)
		f.Close()
	}

	cmd := exec.Command(r.ffmpegPath, "-i", path, "-f", "wav", "-acodec", "pcm_f32le", "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg fallback failed for %s: %v: %s", ErrUnsupportedFormat, path, err, stderr.String())
	}

	dec, err := NewWAVDecoder(bytes.NewReader(stdout.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("decoder: ffmpeg fallback produced unreadable wav: %w", err)
	}
	return dec, nil
}
