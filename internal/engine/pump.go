package engine

import (
	"context"
	"time"

	"github.com/audioengine/audioengine/internal/spectrum"
)

// runPump is the Analyzer Pump (C8): on a ~20Hz cadence it snapshots the
// current playback window, runs the spectrum analyzer outside the lock,
// and publishes spectrum_data and playback_state events. It also reacts
// to the audio callback's end-of-stream signal so a track finishing
// between ticks is reported promptly.
func (e *Engine) runPump(ctx context.Context) {
	defer close(e.pumpDone)

	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()

	var lastPlaying bool

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.eosSignal:
			e.publishPlaybackState()
			lastPlaying = false
		case <-ticker.C:
			playing, frame, channels := e.snapshotForAnalysis()
			if playing {
				bins := e.analyzer.Analyze(frame, channels)
				e.publish(Event{Type: EventSpectrumData, Spectrum: bins})
			}
			if playing != lastPlaying {
				e.publishPlaybackState()
				lastPlaying = playing
			}
		}
	}
}

func (e *Engine) snapshotForAnalysis() (playing bool, frame []float32, channels int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Playing || e.track == nil {
		return false, nil, 0
	}

	channels = e.track.channels
	frame = make([]float32, spectrum.WindowSize*channels)
	e.track.frameSlice(frame, e.position, spectrum.WindowSize)
	return true, frame, channels
}

func (e *Engine) publishPlaybackState() {
	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(Event{Type: EventPlaybackState, State: snap})
}

func (e *Engine) publish(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.log.Warn().Str("event_type", string(ev.Type)).Msg("event channel full, dropping frame")
	}
}
