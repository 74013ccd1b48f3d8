package sound

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// Compile-time interface check.
var _ domain.Chime = (*Player)(nil)

// Player plays one preloaded sound through the system audio device via oto.
// Only one oto context may exist per process, so create a single Player.
type Player struct {
	ctx    *oto.Context
	pcm    []byte
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer opens the audio device for the given WAV data. With nil data
// a synthesized tone is used. Returns an error if the WAV is malformed or
// the audio device is unavailable.
func NewPlayer(wav []byte, log *logger.Logger) (*Player, error) {
	format, pcm := defaultFormat, synthTone(defaultFormat)
	if wav != nil {
		var err error
		format, pcm, err = parseWAV(wav)
		if err != nil {
			return nil, err
		}
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d, %d bytes)", format.SampleRate, format.Channels, len(pcm))
	return &Player{ctx: ctx, pcm: pcm, log: log}, nil
}

// Ding starts playback and returns immediately. A ding that is still
// playing is cut off by the new one.
func (p *Player) Ding(ctx context.Context) {
	player := p.ctx.NewPlayer(bytes.NewReader(p.pcm))

	p.mu.Lock()
	prev := p.active
	p.active = player
	p.mu.Unlock()

	if prev != nil {
		prev.Pause()
	}
	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(p.pcm))

	go p.reap(player)
}

// reap waits for playback to finish and releases the player.
func (p *Player) reap(player *oto.Player) {
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()

	if err := player.Close(); err != nil {
		p.log.Warn("audio player: closing: %v", err)
	}
}

// Stop interrupts the currently playing sound, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}
