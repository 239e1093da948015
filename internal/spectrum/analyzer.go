// Package spectrum implements the windowed-FFT log-binned magnitude
// spectrum analyzer.
package spectrum

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// WindowSize is the fixed FFT window length in samples (§4.3).
const WindowSize = 2048

// NumBins is the fixed number of output log-frequency bins.
const NumBins = 48

const minLogHz = 20.0
const dBFloor = -90.0

// Analyzer holds the precomputed Hann window and bin-edge table for a
// sample rate; both are reused across calls to avoid per-frame allocation.
type Analyzer struct {
	sampleRate int
	hann       [WindowSize]float64
	binEdges   [NumBins + 1]float64

	// scratch buffers, reused across Analyze calls
	mono   [WindowSize]float64
	fftBuf [WindowSize]complex128
}

// New builds an Analyzer for the given sample rate.
func New(sampleRate int) *Analyzer {
	a := &Analyzer{sampleRate: sampleRate}
	for i := 0; i < WindowSize; i++ {
		a.hann[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(WindowSize-1)))
	}
	a.computeBinEdges()
	return a
}

func (a *Analyzer) computeBinEdges() {
	nyquist := float64(a.sampleRate) / 2
	if nyquist <= minLogHz {
		for i := range a.binEdges {
			a.binEdges[i] = 0
		}
		return
	}
	logLo := math.Log10(minLogHz)
	logHi := math.Log10(nyquist)
	step := (logHi - logLo) / NumBins
	for i := 0; i <= NumBins; i++ {
		a.binEdges[i] = math.Pow(10, logLo+step*float64(i))
	}
}

// SetSampleRate rebuilds the bin-edge table for a new sample rate. The Hann
// window is independent of sample rate and is not rebuilt.
func (a *Analyzer) SetSampleRate(sampleRate int) {
	if sampleRate == a.sampleRate {
		return
	}
	a.sampleRate = sampleRate
	a.computeBinEdges()
}

// Analyze downmixes, windows, FFTs and log-bins a frame of interleaved
// multichannel float32 samples, returning a 48-element vector in [0,1].
// frame may contain fewer than WindowSize*channels samples; the tail is
// zero-padded. An all-zero or degenerate (fs/2 <= 20Hz) window yields an
// all-zero result, per §4.3.
func (a *Analyzer) Analyze(frame []float32, channels int) [NumBins]float32 {
	var out [NumBins]float32

	nyquist := float64(a.sampleRate) / 2
	if nyquist <= minLogHz {
		return out
	}
	if channels <= 0 {
		channels = 1
	}

	frames := len(frame) / channels
	allZero := true
	for i := 0; i < WindowSize; i++ {
		var sum float64
		if i < frames {
			for ch := 0; ch < channels; ch++ {
				v := frame[i*channels+ch]
				if v != 0 {
					allZero = false
				}
				sum += float64(v)
			}
			sum /= float64(channels)
		}
		a.mono[i] = sum * a.hann[i]
	}
	if allZero {
		return out
	}

	for i := 0; i < WindowSize; i++ {
		a.fftBuf[i] = complex(a.mono[i], 0)
	}
	spectrum := fft.FFT(a.fftBuf[:])

	var sumSq [NumBins]float64
	var count [NumBins]int

	for k := 1; k < WindowSize/2; k++ {
		re := real(spectrum[k])
		im := imag(spectrum[k])
		mag := math.Sqrt(re*re+im*im) / WindowSize

		freq := float64(k) * float64(a.sampleRate) / WindowSize
		bin := a.binFor(freq)
		if bin < 0 {
			continue
		}
		sumSq[bin] += mag * mag
		count[bin]++
	}

	for i := 0; i < NumBins; i++ {
		var rms float64
		if count[i] > 0 {
			rms = math.Sqrt(sumSq[i] / float64(count[i]))
		}
		dB := 20 * math.Log10(rms+1e-9)
		norm := (dB + 90) / 90
		out[i] = float32(clip(norm, 0, 1))
	}
	return out
}

// binFor returns the log-frequency bin index containing freq, or -1 if
// freq falls outside [binEdges[0], binEdges[NumBins]].
func (a *Analyzer) binFor(freq float64) int {
	if freq < a.binEdges[0] || freq > a.binEdges[NumBins] {
		return -1
	}
	lo, hi := 0, NumBins-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if a.binEdges[mid] <= freq {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
