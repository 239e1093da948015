// Package output implements the Device Backend (C10): the audio output
// sink and the device capability table behind the /devices and
// configure_output endpoints.
package output

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrDeviceNotFound = errors.New("output: device not found")
	ErrNotOpen        = errors.New("output: not open")
)

// Format describes the stream an Output is opened with.
type Format struct {
	SampleRate int
	Channels   int
	Latency    time.Duration
}

// Device is a selectable output device, as surfaced by GET /devices.
type Device struct {
	ID                int
	Name              string
	HostAPI           string
	MaxOutputChannels int
	DefaultSampleRate int
}

// ExclusiveCapable reports whether this device's host API supports
// exclusive-mode streaming, per the wasapi/other grouping in GET /devices.
func (d Device) ExclusiveCapable() bool {
	return strings.Contains(strings.ToLower(d.HostAPI), "wasapi")
}

// Output is an opened audio output stream. The stream is driven entirely
// by its own driver thread pulling from the io.Reader supplied to Open —
// that Reader's Read method is the audio callback described by §4.6: the
// Playback Engine itself implements io.Reader and is handed to Open, so
// the device driver calls directly into engine code on its own cadence.
type Output interface {
	Close() error
	Pause() error
	Resume() error
	IsPlaying() bool
	GetDevice() Device
	GetBufferSize() int
}

// BaseOutput provides fields and accessors shared by output backends.
type BaseOutput struct {
	device     Device
	format     Format
	isPlaying  bool
	bufferSize int
}

func (o *BaseOutput) GetDevice() Device   { return o.device }
func (o *BaseOutput) IsPlaying() bool     { return o.isPlaying }
func (o *BaseOutput) GetBufferSize() int  { return o.bufferSize }
