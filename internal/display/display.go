// Package display provides the full-screen terminal surface using Bubble Tea.
//
// The [UI] type implements [domain.Surface]: a centred title, a phase line,
// a time line and a key-binding footer. The Bubble Tea program runs on its
// own goroutine; key presses are forwarded over a buffered channel that
// [UI.WaitKey] reads with a timeout, so callers keep a simple blocking,
// poll-driven control flow.
package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/input"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// Compile-time interface check.
var _ domain.Surface = (*UI)(nil)

// interruptKey is how Bubble Tea reports Ctrl-C in raw mode.
const interruptKey = "ctrl+c"

// closeTimeout bounds how long Close waits for a graceful quit before
// killing the program.
const closeTimeout = 2 * time.Second

// Option configures the UI.
type Option func(*options)

type options struct {
	in       io.Reader
	out      io.Writer
	keymap   input.Keymap
	title    string
}

// WithInput sets the key source (default os.Stdin).
func WithInput(r io.Reader) Option {
	return func(o *options) { o.in = r }
}

// WithOutput sets the render target (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithKeymap sets the bindings shown in the footer.
func WithKeymap(km input.Keymap) Option {
	return func(o *options) { o.keymap = km }
}

// WithTitle sets the banner text.
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// UI is a terminal surface. Create it with Open and release it with Close.
// ShowPhase, ShowTime and Observe may be called from any goroutine.
type UI struct {
	program *tea.Program
	keys    chan string
	intr    chan struct{}
	readyCh chan struct{}
	doneCh  chan struct{}
	runErr  error
	once    sync.Once
	log     *logger.Logger
}

// newUI allocates the channels shared with the model.
func newUI(log *logger.Logger) *UI {
	return &UI{
		keys:    make(chan string, 64),
		intr:    make(chan struct{}, 1),
		readyCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
		log:     log,
	}
}

// Open takes over the terminal and starts the event loop. It returns once
// the first frame is up. If the input is not a terminal, or the program
// fails to start, the error wraps domain.ErrTerminalUnavailable.
func Open(ctx context.Context, log *logger.Logger, opts ...Option) (*UI, error) {
	o := options{
		in:     os.Stdin,
		out:    os.Stdout,
		keymap: input.DefaultKeymap(),
		title:  " ~~ Pomato Timer ~~ ",
	}
	for _, opt := range opts {
		opt(&o)
	}

	if f, ok := o.in.(interface{ Fd() uintptr }); ok && !term.IsTerminal(f.Fd()) {
		return nil, fmt.Errorf("input is not a terminal: %w", domain.ErrTerminalUnavailable)
	}

	u := newUI(log)
	m := newModel(o.title, o.keymap, u.keys, u.intr, u.readyCh)
	u.program = tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithInput(o.in),
		tea.WithOutput(o.out),
		// Interrupts are handled by the caller's signal context.
		tea.WithoutSignalHandler(),
	)

	go func() {
		_, err := u.program.Run()
		u.runErr = err
		close(u.doneCh)
	}()

	select {
	case <-u.readyCh:
		log.Debug("terminal UI ready")
		return u, nil
	case <-u.doneCh:
		return nil, fmt.Errorf("starting terminal UI: %v: %w", u.runErr, domain.ErrTerminalUnavailable)
	case <-ctx.Done():
		u.Close()
		return nil, ctx.Err()
	}
}

// ShowPhase replaces the phase line.
func (u *UI) ShowPhase(text string) {
	u.send(phaseMsg(text))
}

// ShowTime replaces the time line.
func (u *UI) ShowTime(text string) {
	u.send(timeMsg(text))
}

// Observe updates the progress bar and window title. Its signature fits
// engine.WithObserver.
func (u *UI) Observe(state domain.CountdownState) {
	u.send(stateMsg(state))
}

func (u *UI) send(msg tea.Msg) {
	if u.program == nil {
		return
	}
	select {
	case <-u.doneCh:
		// Program gone; nothing to draw on.
	default:
		u.program.Send(msg)
	}
}

// WaitKey waits up to timeout for a key (domain.NoTimeout waits forever).
// Keys typed earlier are returned in order. Ctrl-C yields
// domain.ErrInterrupted ahead of any buffered keys.
func (u *UI) WaitKey(ctx context.Context, timeout time.Duration) (string, error) {
	select {
	case <-u.intr:
		return domain.NoKey, domain.ErrInterrupted
	default:
	}

	var expired <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-u.intr:
		return domain.NoKey, domain.ErrInterrupted
	case k := <-u.keys:
		return k, nil
	case <-expired:
		return domain.NoKey, nil
	case <-u.doneCh:
		return domain.NoKey, domain.ErrSurfaceClosed
	case <-ctx.Done():
		return domain.NoKey, ctx.Err()
	}
}

// Close stops the program and waits until the terminal is restored. It is
// idempotent and safe to defer on every exit path.
func (u *UI) Close() error {
	u.once.Do(func() {
		if u.program == nil {
			return
		}
		u.program.Quit()
		select {
		case <-u.doneCh:
		case <-time.After(closeTimeout):
			u.log.Warn("terminal UI did not quit in %s, killing it", closeTimeout)
			u.program.Kill()
			<-u.doneCh
		}
		u.log.Debug("terminal UI closed")
	})
	if u.runErr != nil && u.runErr != tea.ErrProgramKilled {
		return u.runErr
	}
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────

// normalizeKey lower-cases a Bubble Tea key name; the space bar is " ".
func normalizeKey(msg tea.KeyMsg) string {
	if msg.Type == tea.KeyCtrlC {
		return interruptKey
	}
	k := strings.ToLower(msg.String())
	if k == "space" {
		return " "
	}
	return k
}
