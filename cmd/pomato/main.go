// Pomato is a terminal interval timer.
//
// Usage:
//
//	pomato [-config file] [-cycles n] [-phase name=duration ...] [-mute] [-verbose] [-quiet]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/pomato/internal/config"
	"github.com/hammamikhairi/pomato/internal/display"
	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/engine"
	"github.com/hammamikhairi/pomato/internal/input"
	"github.com/hammamikhairi/pomato/internal/logger"
	"github.com/hammamikhairi/pomato/internal/sound"
	"github.com/hammamikhairi/pomato/internal/storage"
	"github.com/hammamikhairi/pomato/internal/timer"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// flags holds the command line. Zero values mean "not given" so the
// config file and environment can supply them.
type flags struct {
	configPath string
	cycles     int
	phases     phaseList
	verbose    bool
	quiet      bool
	logFile    string
	mute       bool
	soundFile  string
	soundCmd   string
	clock      string
	set        map[string]bool
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("pomato", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default: user config dir, pomato/config.yaml)")
	fs.IntVar(&f.cycles, "cycles", 0, "number of times to run the phase sequence")
	fs.Var(&f.phases, "phase", "phase as name=duration, e.g. working=25m (repeatable, replaces configured phases)")
	fs.BoolVar(&f.verbose, "verbose", false, "enable verbose/debug logging")
	fs.BoolVar(&f.quiet, "quiet", false, "disable all logging")
	fs.StringVar(&f.logFile, "log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	fs.BoolVar(&f.mute, "mute", false, "do not play the end-of-phase chime")
	fs.StringVar(&f.soundFile, "sound", "", "WAV file to play at the end of a phase")
	fs.StringVar(&f.soundCmd, "sound-cmd", "", "external player command, e.g. \"ffplay -nodisp -autoexit\"")
	fs.StringVar(&f.clock, "clock", "", "tick source: poll or monotonic")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply overlays explicitly given flags onto cfg.
func (f *flags) apply(cfg *config.Config) {
	if f.set["cycles"] {
		cfg.Cycles = f.cycles
	}
	if len(f.phases) > 0 {
		cfg.Phases = f.phases
	}
	if f.set["log-file"] {
		cfg.LogFile = f.logFile
	}
	if f.set["mute"] {
		cfg.Sound.Mute = f.mute
	}
	if f.set["sound"] {
		cfg.Sound.File = f.soundFile
	}
	if f.set["sound-cmd"] {
		cfg.Sound.Command = f.soundCmd
	}
	if f.set["clock"] {
		cfg.Clock = f.clock
	}
	if f.verbose {
		cfg.LogLevel = logger.LevelVerbose.String()
	}
	if f.quiet {
		cfg.LogLevel = logger.LevelOff.String()
	}
}

// loadConfig resolves defaults, the YAML file, POMATO_* variables and
// flags, in increasing precedence.
func loadConfig(f *flags, lookup func(string) (string, bool)) (config.Config, error) {
	path, mustExist := f.configPath, true
	if path == "" {
		mustExist = false
		p, err := config.DefaultPath()
		if err != nil {
			cfg := config.Default()
			return cfg, finishConfig(&cfg, f, lookup)
		}
		path = p
	}

	cfg, err := config.Load(path, mustExist)
	if err != nil {
		return cfg, err
	}
	return cfg, finishConfig(&cfg, f, lookup)
}

func finishConfig(cfg *config.Config, f *flags, lookup func(string) (string, bool)) error {
	if err := cfg.ApplyEnv(lookup); err != nil {
		return err
	}
	f.apply(cfg)
	return cfg.Validate()
}

// openLog directs logs to a file by default so the screen stays clean.
// The returned closer is never nil.
func openLog(cfg config.Config) (*logger.Logger, func(), error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var logOut io.Writer = os.Stderr
	closer := func() {}
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if dir := filepath.Dir(cfg.LogFile); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = file
			closer = func() { file.Close() }
		}
	}

	// Keep third-party output off the terminal too.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	return logger.New(level, logOut), closer, nil
}

func run(args []string) int {
	_ = godotenv.Load()

	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(f, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pomato: %v\n", err)
		return domain.ExitFault.Code()
	}

	log, closeLog, err := openLog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pomato: %v\n", err)
		return domain.ExitFault.Code()
	}
	defer closeLog()

	keymap, err := cfg.Keymap()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pomato: %v\n", err)
		return domain.ExitFault.Code()
	}

	// SIGINT arrives here only while the terminal is in cooked mode; in raw
	// mode Ctrl-C is a key and the display reports it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := storage.NewRunID()
	log.Info("run %s: %d phase(s) x %d cycle(s), clock=%s", runID, len(cfg.Phases), cfg.Cycles, cfg.Clock)

	ui, err := display.Open(ctx, log.Named("display"), display.WithKeymap(keymap))
	if err != nil {
		if ctx.Err() != nil {
			return domain.ExitInterrupted.Code()
		}
		log.Error("opening display: %v", err)
		fmt.Fprintf(os.Stderr, "pomato: %v\n", err)
		return domain.ExitFault.Code()
	}

	journal := storage.NewMemoryJournal(log.Named("journal"))
	chime := sound.New(chimeConfig(cfg.Sound), log.Named("sound"))
	out, runErr := runTimer(ctx, ui, cfg, keymap, chime, journal, runID, log)
	sound.Stop(chime)

	// Restore the terminal before printing anything.
	if err := ui.Close(); err != nil {
		log.Warn("closing display: %v", err)
	}

	sig := exitSignalFor(out, runErr)
	log.Info("run %s finished: %s (outcome=%s)", runID, sig, out)

	if sig == domain.ExitFault {
		log.Error("run failed: %v", runErr)
		fmt.Fprint(os.Stderr, display.RenderSummary("pomato: "+runErr.Error(), display.FaultStyle))
	} else if line, ok := exitReport(context.Background(), journal, sig); ok {
		fmt.Print(display.RenderSummary(line, display.SummaryStyle))
	}
	return sig.Code()
}

// chimeConfig converts the configured sound settings for sound.New.
func chimeConfig(s config.Sound) sound.Config {
	return sound.Config{Mute: s.Mute, File: s.File, Command: s.Command}
}

// exitReport builds the line printed after the terminal is restored. It
// reports nothing for an interrupt or a run that timed no phase.
func exitReport(ctx context.Context, journal *storage.MemoryJournal, sig domain.ExitSignal) (string, bool) {
	if sig == domain.ExitInterrupted || sig == domain.ExitFault {
		return "", false
	}
	last, err := journal.Last(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false
	}
	records, err := journal.List(ctx)
	if err != nil {
		return "", false
	}

	line := timer.Summarize(records).String()
	if sig == domain.ExitUserQuit {
		line += fmt.Sprintf(" (quit during %s, cycle %d)", last.Phase, last.Cycle)
	}
	return line, true
}

// runTimer builds the timer on ui and runs it. A panic anywhere below is
// converted to an error so the caller still restores the terminal.
func runTimer(ctx context.Context, ui *display.UI, cfg config.Config, keymap input.Keymap, chime domain.Chime, journal domain.Journal, runID string, log *logger.Logger) (out domain.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during run: %v", r)
			out, err = domain.OutcomeQuit, fmt.Errorf("internal fault: %v", r)
		}
	}()

	eng := engine.New(log.Named("engine"),
		engine.WithKeymap(keymap),
		engine.WithTickSource(tickSource(cfg.Clock)),
		engine.WithObserver(ui.Observe),
	)

	t := timer.New(ui, log.Named("timer"),
		timer.WithCountdown(eng),
		timer.WithChime(chime),
		timer.WithJournal(journal, runID),
	)
	for _, p := range cfg.Phases {
		t.AddPhase(p.Name, p.Duration)
	}

	return t.Run(ctx, cfg.Cycles)
}

func tickSource(clock string) engine.TickSource {
	if clock == config.ClockMonotonic {
		return engine.NewClockTick(engine.SystemClock)
	}
	return engine.NewPollTick()
}

// exitSignalFor maps the run result to a process exit reason. Quitting and
// interrupting are clean exits; anything else with an error is a fault.
func exitSignalFor(out domain.Outcome, err error) domain.ExitSignal {
	switch {
	case err == nil && out == domain.OutcomeQuit:
		return domain.ExitUserQuit
	case err == nil:
		return domain.ExitNormalCompletion
	case errors.Is(err, domain.ErrInterrupted),
		errors.Is(err, context.Canceled):
		return domain.ExitInterrupted
	default:
		return domain.ExitFault
	}
}

// phaseList is a repeatable -phase flag.
type phaseList []domain.Phase

func (p *phaseList) String() string {
	if p == nil {
		return ""
	}
	parts := make([]string, len(*p))
	for i, ph := range *p {
		parts[i] = fmt.Sprintf("%s=%ds", ph.Name, ph.Duration)
	}
	return strings.Join(parts, ",")
}

func (p *phaseList) Set(v string) error {
	name, dur, ok := strings.Cut(v, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("want name=duration, got %q", v)
	}
	secs, err := config.ParseSeconds(dur)
	if err != nil {
		return err
	}
	*p = append(*p, domain.Phase{Name: name, Duration: secs})
	return nil
}
