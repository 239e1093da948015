// Package dsp implements the 10-band parametric equalizer: biquad coefficient
// design and a persistent-state cascaded filter bank.
package dsp

import "math"

// SOS is a single second-order section (one biquad stage), coefficients
// already normalized by a0.
type SOS struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// sectionState holds the two delay-line registers of a direct-form-II
// transposed biquad section.
type sectionState struct {
	s1, s2 float64
}

// designPeakingEQ computes the SOS for a peaking-EQ biquad at center
// frequency f0 (Hz), quality q, gain gainDB (dB), for sample rate fs.
// Returns ok=false when f0 is at or above 0.95 of Nyquist, in which case the
// band contributes no section.
func designPeakingEQ(f0, q, gainDB float64, fs int) (SOS, bool) {
	nyquist := float64(fs) / 2
	if f0 >= 0.95*nyquist {
		return SOS{}, false
	}

	a := math.Pow(10, gainDB/40)
	w0 := 2 * math.Pi * f0 / float64(fs)
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * q)

	b0 := 1 + alpha*a
	b1 := -2 * cosW0
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosW0
	a2 := 1 - alpha/a

	return SOS{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}, true
}

// processSection runs one direct-form-II-transposed biquad section over
// samples in place, threading st across calls.
func processSection(sos SOS, st *sectionState, samples []float64) {
	s1, s2 := st.s1, st.s2
	for i, x0 := range samples {
		y0 := sos.B0*x0 + s1
		s1 = sos.B1*x0 - sos.A1*y0 + s2
		s2 = sos.B2*x0 - sos.A2*y0
		samples[i] = y0
	}
	st.s1, st.s2 = s1, s2
}
