package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v3"
)

// OtoOutput is an Output backed by github.com/hajimehoshi/oto/v3. oto
// pulls audio data by calling Read on the io.Reader passed to Open, on
// its own driver thread — that Reader is the Playback Engine, making its
// Read method the device-invoked audio callback of §4.6.
type OtoOutput struct {
	BaseOutput
	context *oto.Context
	player  oto.Player
	mu      sync.Mutex
	closed  bool
}

// Open creates an oto context and player reading from callback. The
// player starts in the playing state; Pause/Resume control it thereafter.
func Open(device Device, format Format, callback io.Reader) (*OtoOutput, error) {
	o := &OtoOutput{BaseOutput: BaseOutput{device: device, format: format}}

	options := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatFloat32LE,
	}
	if format.Latency > 0 {
		options.BufferSize = format.Latency
	}

	context, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("output: open device %q: %w", device.Name, err)
	}
	<-ready

	o.context = context
	o.bufferSize = int(options.BufferSize.Seconds() * float64(format.SampleRate))
	o.player = o.context.NewPlayer(callback)
	o.player.Play()
	o.isPlaying = true

	return o, nil
}

func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.isPlaying = false

	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	o.context = nil
	return nil
}

func (o *OtoOutput) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return ErrNotOpen
	}
	o.player.Pause()
	o.isPlaying = false
	return nil
}

func (o *OtoOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		return ErrNotOpen
	}
	o.player.Play()
	o.isPlaying = true
	return nil
}
