// Package sound provides the end-of-phase chime implementations: an oto
// audio player, an external player command, the terminal bell, and a
// silent no-op.
package sound

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Chime = (*NoOp)(nil)
	_ domain.Chime = (*Bell)(nil)
)

// NoOp is a chime that does nothing. Used when sound is muted.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent chime.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Ding does nothing.
func (n *NoOp) Ding(ctx context.Context) {
	n.log.Debug("chime muted")
}

// Bell rings the terminal bell by writing BEL to w.
type Bell struct {
	w   io.Writer
	log *logger.Logger
}

// NewBell creates a terminal-bell chime. A nil writer uses os.Stdout.
func NewBell(w io.Writer, log *logger.Logger) *Bell {
	if w == nil {
		w = os.Stdout
	}
	return &Bell{w: w, log: log}
}

// Ding writes the bell character.
func (b *Bell) Ding(ctx context.Context) {
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		b.log.Debug("bell: %v", err)
	}
}

// Config selects and configures a chime.
type Config struct {
	Mute    bool
	File    string // WAV file; empty uses the built-in tone
	Command string // external player, e.g. "ffplay -nodisp -autoexit"
}

// Seams for tests; the audio device and PATH are not under test control.
var (
	openPlayer = func(wav []byte, log *logger.Logger) (domain.Chime, error) {
		p, err := NewPlayer(wav, log)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	lookPath = exec.LookPath
)

// New picks a chime for cfg: muted, an external command, or the audio
// device. When the audio device cannot be opened a configured file is
// handed to DefaultCommand if it is installed; otherwise the terminal bell
// is used. It never fails.
func New(cfg Config, log *logger.Logger) domain.Chime {
	if cfg.Mute {
		return NewNoOp(log)
	}

	if cfg.Command != "" {
		argv := strings.Fields(cfg.Command)
		if cfg.File != "" {
			argv = append(argv, cfg.File)
		}
		log.Info("chime: command %q", strings.Join(argv, " "))
		return NewCommandChime(argv, log)
	}

	var wav []byte
	if cfg.File != "" {
		data, err := os.ReadFile(cfg.File)
		if err != nil {
			log.Warn("chime: reading %s: %v (using built-in tone)", cfg.File, err)
		} else {
			wav = data
		}
	}

	player, err := openPlayer(wav, log)
	if err == nil {
		return player
	}
	log.Warn("chime: audio player init failed: %v", err)

	if cfg.File != "" {
		if _, err := lookPath(DefaultCommand[0]); err == nil {
			argv := append(append([]string(nil), DefaultCommand...), cfg.File)
			log.Info("chime: falling back to %q", strings.Join(argv, " "))
			return NewCommandChime(argv, log)
		}
	}

	log.Info("chime: using terminal bell")
	return NewBell(nil, log)
}

// Stop silences c if it is still playing. Chimes that cannot be
// interrupted are left alone.
func Stop(c domain.Chime) {
	if s, ok := c.(interface{ Stop() }); ok {
		s.Stop()
	}
}
