package sound

import (
	"context"
	"os/exec"
	"sync/atomic"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// Compile-time interface check.
var _ domain.Chime = (*CommandChime)(nil)

// DefaultCommand plays a file with ffplay without opening a window.
var DefaultCommand = []string{"ffplay", "-nodisp", "-autoexit"}

// CommandChime plays a sound by spawning an external player. The process
// is started and reaped in the background; Ding never waits for it.
type CommandChime struct {
	argv   []string
	log    *logger.Logger
	warned atomic.Bool
}

// NewCommandChime creates a chime that runs argv. argv must not be empty.
func NewCommandChime(argv []string, log *logger.Logger) *CommandChime {
	return &CommandChime{argv: argv, log: log}
}

// Ding spawns the player. A player that cannot be started is reported
// once and then ignored.
func (c *CommandChime) Ding(ctx context.Context) {
	// Not tied to ctx: the sound may outlive a quit.
	cmd := exec.Command(c.argv[0], c.argv[1:]...)
	if err := cmd.Start(); err != nil {
		if !c.warned.Swap(true) {
			c.log.Warn("chime command %q unavailable: %v", c.argv[0], err)
		}
		return
	}
	c.log.Debug("chime command started (pid=%d)", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			c.log.Debug("chime command exited: %v", err)
		}
	}()
}
