// Package resample implements the external resampler abstraction that
// spec.md leaves opaque: a linear-interpolation resampler over flat
// interleaved float32 PCM for a fixed channel count.
package resample

import "fmt"

// Linear resamples interleaved float32 samples (frames x channels) from
// srcRate to dstRate, preserving channel count. Returns an error if either
// rate is non-positive or channels < 1.
func Linear(samples []float32, channels, srcRate, dstRate int) ([]float32, error) {
	if channels < 1 {
		return nil, fmt.Errorf("resample: invalid channel count %d", channels)
	}
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resample: invalid sample rate src=%d dst=%d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}

	srcFrames := len(samples) / channels
	if srcFrames == 0 {
		return []float32{}, nil
	}

	ratio := float64(dstRate) / float64(srcRate)
	dstFrames := int(float64(srcFrames) * ratio)
	if dstFrames < 1 {
		dstFrames = 1
	}

	out := make([]float32, dstFrames*channels)
	step := float64(srcFrames-1) / float64(maxInt(dstFrames-1, 1))

	for i := 0; i < dstFrames; i++ {
		srcPos := float64(i) * step
		i0 := int(srcPos)
		if i0 >= srcFrames-1 {
			i0 = srcFrames - 2
			if i0 < 0 {
				i0 = 0
			}
		}
		i1 := i0 + 1
		if i1 >= srcFrames {
			i1 = srcFrames - 1
		}
		frac := srcPos - float64(i0)

		for ch := 0; ch < channels; ch++ {
			a := samples[i0*channels+ch]
			b := samples[i1*channels+ch]
			out[i*channels+ch] = a + float32(frac)*(b-a)
		}
	}
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
