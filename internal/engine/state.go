package engine

import "github.com/audioengine/audioengine/internal/spectrum"

// StateSnapshot is the Control Surface's observable transport+config
// state, returned by get_state and pushed as playback_state events.
type StateSnapshot struct {
	IsPlaying          bool    `json:"is_playing"`
	IsPaused           bool    `json:"is_paused"`
	DurationSeconds    float64 `json:"duration_seconds"`
	CurrentTimeSeconds float64 `json:"current_time_seconds"`
	FilePath           string  `json:"file_path"`
	Volume             float64 `json:"volume"`
	DeviceID           int     `json:"device_id"`
	ExclusiveMode      bool    `json:"exclusive_mode"`
}

// EventType discriminates the two kinds of frames pushed over the
// WebSocket gateway (C11).
type EventType string

const (
	EventSpectrumData  EventType = "spectrum_data"
	EventPlaybackState EventType = "playback_state"
)

// Event is one item published on the engine's event channel. Exactly one
// of Spectrum/State is populated, per Type.
type Event struct {
	Type     EventType
	Spectrum [spectrum.NumBins]float32
	State    StateSnapshot
}
