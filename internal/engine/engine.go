// Package engine implements the Playback Engine (C6), its Control
// Surface (C7) and the Analyzer Pump (C8): a transport state machine
// driving a device output stream, with EQ and upsampling config mutable
// concurrently with the audio callback.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/audioengine/audioengine/internal/dsp"
	"github.com/audioengine/audioengine/internal/loader"
	"github.com/audioengine/audioengine/internal/output"
	"github.com/audioengine/audioengine/internal/spectrum"
)

const pumpInterval = 50 * time.Millisecond // 1/20s, per §4.8's analyzer pump cadence

// Engine is the Playback Engine plus Control Surface: one loaded track,
// one transport state, one output stream, one EQ configuration. All
// exported methods acquire mu once and delegate to unexported *Locked
// helpers; the audio callback (Read) is the one caller that must not hold
// mu for the duration of DSP work, per §4.6's split-hot-path discipline.
type Engine struct {
	mu sync.Mutex

	state    TransportState
	track    *trackBuffer
	position int64 // frames
	filePath string

	volume    float64
	exclusive bool
	deviceID  int // 0 means "use default"

	targetSampleRateOverride int

	eqConfig dsp.Config
	eqState  *dsp.State

	analyzer *spectrum.Analyzer
	out      output.Output

	devices *output.Manager
	loader  *loader.Loader
	log     zerolog.Logger

	events    chan Event
	eosSignal chan struct{}

	pumpCancel context.CancelFunc
	pumpDone   chan struct{}

	// cbScratch is reused across Read calls to avoid allocating on the
	// audio driver's thread; it is only ever touched from Read, which the
	// output backend guarantees is called by a single goroutine.
	cbScratch []float32
}

// New builds an Engine in the Empty state and starts its Analyzer Pump.
func New(devices *output.Manager, ld *loader.Loader, log zerolog.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		state:     Empty,
		volume:    1.0,
		eqConfig:  dsp.NewConfig(44100),
		analyzer:  spectrum.New(44100),
		devices:   devices,
		loader:    ld,
		log:       log,
		events:    make(chan Event, 32),
		eosSignal: make(chan struct{}, 1),

		pumpCancel: cancel,
		pumpDone:   make(chan struct{}),
	}
	go e.runPump(ctx)
	return e
}

// Events returns the channel Control Surface consumers (the WebSocket
// gateway) should drain for spectrum_data and playback_state frames.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Close stops the Analyzer Pump and releases the output stream, if any.
func (e *Engine) Close() error {
	e.pumpCancel()
	<-e.pumpDone

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeStreamLocked()
}

// Load opens path, replacing any currently loaded track. Per §4.6, a
// currently playing track is stopped first.
func (e *Engine) Load(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked(path)
}

func (e *Engine) loadLocked(path string) error {
	e.stopLocked()

	opts := loader.Options{
		TargetSampleRateOverride: e.targetSampleRateOverride,
		Exclusive:                e.exclusive,
		Device:                   e.currentDeviceLocked(),
	}

	result, err := e.loader.Load(path, opts)
	if err != nil {
		e.state = Empty
		e.track = nil
		e.filePath = ""
		switch {
		case errors.Is(err, loader.ErrResample):
			return newResampleFailed(err)
		default:
			return newDecodeFailed(err)
		}
	}

	e.track = &trackBuffer{
		sampleRate: result.SampleRate,
		channels:   result.Channels,
		frames:     result.Frames,
		samples:    result.Samples,
	}
	e.position = 0
	e.filePath = path
	e.state = Stopped
	e.eqState = dsp.NewState(result.Channels)
	e.eqConfig.Redesign(result.SampleRate)
	e.analyzer.SetSampleRate(result.SampleRate)
	return nil
}

// Play transitions Stopped/Paused to Playing, opening the output stream
// if necessary. It is a no-op in Playing, and an illegal no-op (logged)
// in Empty, per §4.6.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case Playing:
		return nil
	case Empty:
		e.log.Warn().Msg("play: no-op, no track loaded")
		return newNotLoaded("no track loaded")
	case Paused:
		if err := e.out.Resume(); err != nil {
			return newDeviceUnavailable(err)
		}
		e.state = Playing
		return nil
	case Stopped:
		if err := e.openStreamLocked(); err != nil {
			return err
		}
		e.state = Playing
		return nil
	default:
		return nil
	}
}

// Pause transitions Playing to Paused. No-op otherwise.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Playing {
		return nil
	}
	if err := e.out.Pause(); err != nil {
		return newDeviceUnavailable(err)
	}
	e.state = Paused
	return nil
}

// Stop halts playback and resets position to 0, closing the output
// stream. No-op in Empty.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

func (e *Engine) stopLocked() {
	if e.state == Empty {
		return
	}
	e.closeStreamLocked()
	e.position = 0
	e.state = Stopped
}

// Seek moves the playback position to seconds. Rejects (rather than
// clamps) an out-of-range request, per §4.6's seek transition.
func (e *Engine) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return newNotLoaded("no track loaded")
	}
	if seconds < 0 {
		return newBadRequest("seek position must be non-negative")
	}

	frame := int64(math.Round(seconds * float64(e.track.sampleRate)))
	if frame >= e.track.totalFrames() {
		return newBadRequest(fmt.Sprintf("seek position %.3fs is beyond track duration", seconds))
	}

	e.position = frame
	return nil
}

// SetVolume sets playback volume, clamped to [0, 1] per §4.6.
func (e *Engine) SetVolume(volume float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = clipVolume(volume)
	return nil
}

func clipVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetEQ replaces the active gain map and enabled flag. Unknown band
// identifiers are rejected; on error the EQ configuration is unchanged.
func (e *Engine) SetEQ(gains map[string]float64, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.eqConfig.SetGains(gains, enabled); err != nil {
		return newBadRequest(err.Error())
	}
	if e.eqState != nil {
		e.eqState.Reset()
	}
	return nil
}

// GetState returns the Control Surface's current observable snapshot.
func (e *Engine) GetState() StateSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() StateSnapshot {
	var duration, current float64
	if e.track != nil && e.track.sampleRate > 0 {
		duration = float64(e.track.frames) / float64(e.track.sampleRate)
		current = float64(e.position) / float64(e.track.sampleRate)
	}
	return StateSnapshot{
		IsPlaying:          e.state == Playing,
		IsPaused:           e.state == Paused,
		DurationSeconds:    duration,
		CurrentTimeSeconds: current,
		FilePath:           e.filePath,
		Volume:             e.volume,
		DeviceID:           e.deviceID,
		ExclusiveMode:      e.exclusive,
	}
}

// ConfigureOutput applies a new device selection and/or exclusive-mode
// request. Per §4.6: stop, apply, reload the current track if one is
// loaded (remapping position proportionally if the sample rate changes),
// and resume playback if it was playing before the call.
func (e *Engine) ConfigureOutput(deviceID *int, exclusive bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasPlaying := e.state == Playing
	oldSampleRate := 0
	if e.track != nil {
		oldSampleRate = e.track.sampleRate
	}
	savedPosition := e.position

	e.stopLocked()

	if deviceID != nil {
		e.deviceID = *deviceID
	}
	e.exclusive = exclusive

	if e.filePath == "" {
		return nil
	}

	path := e.filePath
	if err := e.loadLocked(path); err != nil {
		return err
	}
	e.remapPositionLocked(oldSampleRate, savedPosition)

	if wasPlaying {
		if err := e.openStreamLocked(); err != nil {
			return err
		}
		e.state = Playing
	}
	return nil
}

// ConfigureUpsampling sets the target-sample-rate override. targetSR nil
// clears the override. Follows the same stop/apply/reload/resume
// discipline as ConfigureOutput.
func (e *Engine) ConfigureUpsampling(targetSR *int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasPlaying := e.state == Playing
	oldSampleRate := 0
	if e.track != nil {
		oldSampleRate = e.track.sampleRate
	}
	savedPosition := e.position

	e.stopLocked()

	if targetSR == nil {
		e.targetSampleRateOverride = 0
	} else {
		e.targetSampleRateOverride = *targetSR
	}

	if e.filePath == "" {
		return nil
	}

	path := e.filePath
	if err := e.loadLocked(path); err != nil {
		return err
	}
	e.remapPositionLocked(oldSampleRate, savedPosition)

	if wasPlaying {
		if err := e.openStreamLocked(); err != nil {
			return err
		}
		e.state = Playing
	}
	return nil
}

// remapPositionLocked rescales a saved frame position from oldSampleRate
// to the newly (re)loaded track's sample rate, per §4.6's
// new_pos = old_pos * new_sr / old_sr hot-swap invariant.
func (e *Engine) remapPositionLocked(oldSampleRate int, oldPosition int64) {
	if oldSampleRate <= 0 || e.track == nil {
		return
	}
	newPos := int64(float64(oldPosition) * float64(e.track.sampleRate) / float64(oldSampleRate))
	if newPos < 0 {
		newPos = 0
	}
	if newPos >= e.track.totalFrames() {
		newPos = e.track.totalFrames()
		if newPos > 0 {
			newPos--
		}
	}
	e.position = newPos
}

func (e *Engine) currentDeviceLocked() output.Device {
	if e.deviceID != 0 {
		if d, ok := e.devices.ByID(e.deviceID); ok {
			return d
		}
	}
	return e.devices.Default()
}

func (e *Engine) openStreamLocked() error {
	if e.out != nil {
		e.out.Close()
		e.out = nil
	}

	device := e.currentDeviceLocked()

	if e.exclusive && !device.ExclusiveCapable() {
		e.log.Warn().Str("device", device.Name).Msg("configure_output: exclusive mode unavailable on this device, falling back to shared mode")
	}

	format := output.Format{
		SampleRate: e.track.sampleRate,
		Channels:   e.track.channels,
		Latency:    50 * time.Millisecond,
	}

	out, err := output.Open(device, format, e)
	if err != nil {
		return newDeviceUnavailable(err)
	}
	e.out = out
	return nil
}

func (e *Engine) closeStreamLocked() error {
	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out = nil
	return err
}
