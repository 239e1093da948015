package engine

import (
	"encoding/binary"
	"math"

	"github.com/audioengine/audioengine/internal/dsp"
)

const bytesPerSample = 4 // float32 little-endian, per output.Format

// Read implements io.Reader, making the Engine itself the device-invoked
// audio callback of §4.6. The output backend's driver thread calls this
// on its own cadence with a buffer sized to its target frame count.
//
// The hot path is split from the control plane exactly once per call:
// state and samples are copied out under mu, EQ processing and
// volume/clip run against a private copy with mu released, and mu is
// reacquired only to write back the advanced position and EQ state.
func (e *Engine) Read(p []byte) (int, error) {
	e.mu.Lock()

	if e.state != Playing || e.track == nil {
		e.mu.Unlock()
		zeroFill(p)
		return len(p), nil
	}

	channels := e.track.channels
	frameBytes := channels * bytesPerSample
	frames := len(p) / frameBytes
	if frames == 0 {
		e.mu.Unlock()
		return 0, nil
	}

	if e.position+int64(frames) > e.track.totalFrames() {
		e.state = Stopped
		e.position = 0
		e.mu.Unlock()

		zeroFill(p)
		select {
		case e.eosSignal <- struct{}{}:
		default:
		}
		return len(p), nil
	}

	if cap(e.cbScratch) < frames*channels {
		e.cbScratch = make([]float32, frames*channels)
	}
	block := e.cbScratch[:frames*channels]
	e.track.frameSlice(block, e.position, frames)

	cfg := e.eqConfig
	stateCopy := e.eqState.Clone()
	volume := e.volume

	e.mu.Unlock()

	dsp.Process(cfg, stateCopy, block)
	applyVolumeAndClip(block, volume)
	written := frames * frameBytes
	encodeFloat32LE(p[:written], block)
	zeroFill(p[written:])

	e.mu.Lock()
	e.eqState.AssignFrom(stateCopy)
	e.position += int64(frames)
	e.mu.Unlock()

	return len(p), nil
}

func applyVolumeAndClip(block []float32, volume float64) {
	for i, s := range block {
		v := float32(float64(s) * volume)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		block[i] = v
	}
}

func encodeFloat32LE(dst []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*bytesPerSample:], math.Float32bits(s))
	}
}

func zeroFill(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
