// Package wavcodec implements a minimal RIFF/WAVE codec for interleaved
// float32 PCM, shared by the Resample Cache (C4) and the Decoder Registry's
// WAV/FFmpeg-fallback path (C9). It exists because no library in the
// example pack demonstrates a float32-format WAV round trip (see
// DESIGN.md); a 16-bit PCM WAVE is also accepted on read, for files
// produced outside this codec.
package wavcodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Info is a decoded WAVE file's format and interleaved float32 samples.
type Info struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// WriteFloat writes interleaved float32 samples as a canonical IEEE-float
// RIFF/WAVE file (format tag 3).
func WriteFloat(w io.Writer, samples []float32, sampleRate, channels int) error {
	const bitsPerSample = 32
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign
	dataSize := len(samples) * 4

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(3)) // IEEE float
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadFloat reads a RIFF/WAVE file into interleaved float32 samples,
// accepting either IEEE-float (32-bit) or PCM (16-bit) encoding.
func ReadFloat(r io.Reader) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("wavcodec: read: %w", err)
	}
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Info{}, fmt.Errorf("wavcodec: not a RIFF/WAVE file")
	}

	var (
		channels, bitsPerSample int
		sampleRate              int
		audioFormat             uint16
		dataStart, dataEnd      int
	)

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			dataStart = body
			dataEnd = body + chunkSize
		}

		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if dataStart == 0 || channels == 0 || sampleRate == 0 {
		return Info{}, fmt.Errorf("wavcodec: malformed wav, missing fmt/data chunk")
	}

	raw := data[dataStart:dataEnd]
	var samples []float32

	switch {
	case audioFormat == 3 && bitsPerSample == 32:
		samples = make([]float32, len(raw)/4)
		for i := range samples {
			bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
			samples[i] = math.Float32frombits(bits)
		}
	case audioFormat == 1 && bitsPerSample == 16:
		samples = make([]float32, len(raw)/2)
		for i := range samples {
			v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
			samples[i] = float32(v) / 32768.0
		}
	default:
		return Info{}, fmt.Errorf("wavcodec: unsupported wav encoding format=%d bits=%d", audioFormat, bitsPerSample)
	}

	return Info{SampleRate: sampleRate, Channels: channels, Samples: samples}, nil
}
