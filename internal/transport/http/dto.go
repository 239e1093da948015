package http

import (
	"github.com/audioengine/audioengine/internal/engine"
	"github.com/audioengine/audioengine/internal/spectrum"
)

type envelope struct {
	Status string                `json:"status"`
	State  *engine.StateSnapshot `json:"state,omitempty"`
}

func ok(state engine.StateSnapshot) envelope {
	return envelope{Status: "ok", State: &state}
}

func okNoState() envelope {
	return envelope{Status: "ok"}
}

type loadRequest struct {
	Path string `json:"path"`
}

type seekRequest struct {
	Position float64 `json:"position"`
}

type volumeRequest struct {
	Volume float64 `json:"volume"`
}

type setEQRequest struct {
	Bands   map[string]float64 `json:"bands"`
	Enabled bool                `json:"enabled"`
}

type configureOutputRequest struct {
	DeviceID  *int `json:"device_id"`
	Exclusive bool `json:"exclusive"`
}

type configureUpsamplingRequest struct {
	TargetSampleRate *int `json:"target_samplerate"`
}

type deviceDTO struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	HostAPI           string `json:"hostapi"`
	MaxOutputChannels int    `json:"max_output_channels"`
	DefaultSampleRate int    `json:"default_samplerate"`
}

type devicesResponse struct {
	Status  string `json:"status"`
	Devices struct {
		WASAPI []deviceDTO `json:"wasapi"`
		Other  []deviceDTO `json:"other"`
	} `json:"devices"`
}

type spectrumFrame struct {
	Type string                          `json:"type"`
	Data [spectrum.NumBins]float32 `json:"data"`
}

type playbackStateFrame struct {
	Type  string                `json:"type"`
	State engine.StateSnapshot `json:"state"`
}
