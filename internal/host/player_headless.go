//go:build headless

package host

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Player drains PCM without an audio device. It is selected with the
// headless build tag for CI and servers.
type Player struct {
	channels int
}

// NewPlayer returns a drain-only player.
func NewPlayer(sampleRate, channels int, bufferSize time.Duration) (*Player, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("host player: invalid format %d Hz / %d ch", sampleRate, channels)
	}
	return &Player{channels: channels}, nil
}

// Play reads r to the end as fast as possible or until ctx is done.
func (p *Player) Play(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 4096*p.channels*BytesPerSample)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := r.Read(buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("host player: %w", err)
		}
	}
}

// Close is a no-op.
func (p *Player) Close() error { return nil }
