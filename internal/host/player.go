//go:build !headless

package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// pollInterval is how often Play checks for the end of playback.
const pollInterval = 20 * time.Millisecond

// Player sends float32 PCM to the default audio device. Only one Player
// may exist per process.
type Player struct {
	ctx *oto.Context

	mu     sync.Mutex
	active *oto.Player
}

// NewPlayer opens the audio device. bufferSize trades latency for
// robustness; zero selects the backend default.
func NewPlayer(sampleRate, channels int, bufferSize time.Duration) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("host player: %w", err)
	}
	<-ready

	return &Player{ctx: ctx}, nil
}

// Play streams r to the device until r is exhausted or ctx is done.
func (p *Player) Play(ctx context.Context, r io.Reader) error {
	p.mu.Lock()
	if p.active != nil {
		p.mu.Unlock()
		return errors.New("host player: already playing")
	}
	pl := p.ctx.NewPlayer(r)
	p.active = pl
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active = nil
		p.mu.Unlock()
		pl.Close()
	}()

	pl.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for pl.IsPlaying() {
		select {
		case <-ctx.Done():
			pl.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if err := pl.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("host player: %w", err)
	}
	return nil
}

// Close stops any playback. The audio device stays open until exit.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != nil {
		p.active.Pause()
	}
	return p.ctx.Suspend()
}
