package dsp

import "fmt"

// NumBands is the fixed size of the parametric equalizer's band set.
const NumBands = 10

// Q is the fixed quality factor applied to every band.
const Q = 1.41

// bandIDs is the fixed, ascending-frequency band identifier set from the
// data model. Index in this slice is the canonical band index used
// throughout Config and State.
var bandIDs = [NumBands]string{"31", "62", "125", "250", "500", "1k", "2k", "4k", "8k", "16k"}

var bandFrequencies = [NumBands]float64{31.25, 62.5, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// BandIndex returns the canonical index of a band identifier.
func BandIndex(id string) (int, bool) {
	for i, b := range bandIDs {
		if b == id {
			return i, true
		}
	}
	return 0, false
}

// BandConfig is one slot of the fixed 10-band array: its center frequency is
// implicit in its index, its gain and derived SOS are mutable.
type BandConfig struct {
	GainDB float64
	SOS    SOS
	Valid  bool // false when the band's center frequency is omitted (>= 0.95 Nyquist)
}

// Config is the EQ Configuration plus the derived EQ Filter Set: a fixed
// array of 10 band records, each carrying its design. Config is cheap to
// copy and is the piece of EQ state that is read and mutated under the
// engine's lock; State (below) is the per-channel delay-line memory that is
// copied out and processed outside the lock.
type Config struct {
	Enabled    bool
	SampleRate int
	Bands      [NumBands]BandConfig
}

// NewConfig builds a flat-response (all bands 0 dB, disabled) configuration
// for the given sample rate.
func NewConfig(sampleRate int) Config {
	cfg := Config{SampleRate: sampleRate}
	for i := range cfg.Bands {
		sos, valid := designPeakingEQ(bandFrequencies[i], Q, 0, sampleRate)
		cfg.Bands[i] = BandConfig{GainDB: 0, SOS: sos, Valid: valid}
	}
	return cfg
}

// SetGains clips each gain to [-15, 15] and redesigns the SOS of every band
// named in gains at the configuration's current sample rate; bands not
// named keep their gain and SOS. Unknown band identifiers are rejected; on
// error, cfg is left unmodified.
func (cfg *Config) SetGains(gains map[string]float64, enabled bool) error {
	next := cfg.Bands
	for id, gainDB := range gains {
		idx, ok := BandIndex(id)
		if !ok {
			return fmt.Errorf("dsp: unknown eq band %q", id)
		}
		gainDB = clip(gainDB, -15, 15)
		sos, valid := designPeakingEQ(bandFrequencies[idx], Q, gainDB, cfg.SampleRate)
		next[idx] = BandConfig{GainDB: gainDB, SOS: sos, Valid: valid}
	}
	cfg.Bands = next
	cfg.Enabled = enabled
	return nil
}

// Gains returns the current band-id to gain-dB mapping.
func (cfg Config) Gains() map[string]float64 {
	out := make(map[string]float64, NumBands)
	for i, b := range cfg.Bands {
		out[bandIDs[i]] = b.GainDB
	}
	return out
}

// Redesign recomputes every band's SOS for a new sample rate, preserving
// gains. Called on sample-rate change per the Data Model invariant.
func (cfg *Config) Redesign(sampleRate int) {
	cfg.SampleRate = sampleRate
	for i := range cfg.Bands {
		sos, valid := designPeakingEQ(bandFrequencies[i], Q, cfg.Bands[i].GainDB, sampleRate)
		cfg.Bands[i].SOS = sos
		cfg.Bands[i].Valid = valid
	}
}

// activeBandIndices returns the indices of bands that are valid and have a
// nonzero gain, already in ascending-frequency order since Bands is fixed
// order.
func (cfg Config) activeBandIndices() []int {
	var active []int
	for i, b := range cfg.Bands {
		if b.Valid && b.GainDB != 0 {
			active = append(active, i)
		}
	}
	return active
}

// State is the per-channel, per-band delay-line memory (EQ Filter State).
// Allocated for all 10 bands regardless of which are currently active, so
// that toggling a band on and off never discards unrelated state (slot
// stability per §4.2).
type State struct {
	Channels int
	sections [][NumBands]sectionState
	scratch  []float64
}

// NewState allocates zeroed filter state for the given channel count.
func NewState(channels int) *State {
	return &State{
		Channels: channels,
		sections: make([][NumBands]sectionState, channels),
	}
}

// Reset zeroes all delay-line registers without reallocating.
func (s *State) Reset() {
	for i := range s.sections {
		s.sections[i] = [NumBands]sectionState{}
	}
}

// Clone returns a deep copy of s's delay-line registers, for callers that
// must process outside a lock against a private copy and write the
// result back under lock afterward (the audio callback's split-hot-path
// discipline).
func (s *State) Clone() *State {
	clone := &State{
		Channels: s.Channels,
		sections: make([][NumBands]sectionState, len(s.sections)),
	}
	copy(clone.sections, s.sections)
	return clone
}

// AssignFrom copies the delay-line registers of other into s in place,
// without reallocating s's backing array.
func (s *State) AssignFrom(other *State) {
	copy(s.sections, other.sections)
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

// Process applies the cascaded EQ in place to an interleaved float32 block,
// reading cfg and threading state across calls. When cfg.Enabled is false,
// block is returned unmodified. Process performs no locking: callers that
// share cfg/state across goroutines (the audio callback and the control
// surface) must copy them under their own synchronization, per the
// split-hot-path-from-control-plane discipline.
func Process(cfg Config, state *State, block []float32) {
	if !cfg.Enabled {
		return
	}
	if state.Channels <= 0 {
		return
	}
	active := cfg.activeBandIndices()
	if len(active) == 0 {
		return
	}

	frames := len(block) / state.Channels
	if cap(state.scratch) < frames {
		state.scratch = make([]float64, frames)
	}
	scratch := state.scratch[:frames]

	for ch := 0; ch < state.Channels; ch++ {
		for i := 0; i < frames; i++ {
			scratch[i] = float64(block[i*state.Channels+ch])
		}
		for _, bandIdx := range active {
			processSection(cfg.Bands[bandIdx].SOS, &state.sections[ch][bandIdx], scratch)
		}
		for i := 0; i < frames; i++ {
			block[i*state.Channels+ch] = float32(scratch[i])
		}
	}
}
