package engine

// trackBuffer is an immutable, interleaved float32 PCM block for one
// loaded file. It is replaced atomically on load and never mutated in
// place; the audio callback only ever reads from it.
type trackBuffer struct {
	sampleRate int
	channels   int
	frames     int64
	samples    []float32 // interleaved, len == frames*channels
}

func (t *trackBuffer) totalFrames() int64 {
	if t == nil {
		return 0
	}
	return t.frames
}

// frameSlice returns the interleaved samples for [start, start+n) frames,
// zero-padding the tail if the request runs past the end of the buffer.
// dst must have length n*channels.
func (t *trackBuffer) frameSlice(dst []float32, start int64, n int) int {
	if t == nil {
		for i := range dst {
			dst[i] = 0
		}
		return 0
	}

	channels := int64(t.channels)
	available := t.frames - start
	if available < 0 {
		available = 0
	}
	framesToCopy := int64(n)
	if framesToCopy > available {
		framesToCopy = available
	}

	copiedSamples := 0
	if framesToCopy > 0 {
		from := start * channels
		to := from + framesToCopy*channels
		copiedSamples = copy(dst, t.samples[from:to])
	}
	for i := copiedSamples; i < len(dst); i++ {
		dst[i] = 0
	}
	return int(framesToCopy)
}
