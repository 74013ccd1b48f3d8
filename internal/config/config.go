// Package config loads the timer configuration: the phase sequence, cycle
// count, chime and key bindings. Values come from built-in defaults, an
// optional YAML file and POMATO_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/input"
)

const (
	appName        = "pomato"
	configFileName = "config.yaml"
)

// Tick clock modes.
const (
	ClockPoll      = "poll"
	ClockMonotonic = "monotonic"
)

// Environment variable names.
const (
	EnvCycles   = "POMATO_CYCLES"
	EnvSound    = "POMATO_SOUND"
	EnvSoundCmd = "POMATO_SOUND_CMD"
	EnvMute     = "POMATO_MUTE"
	EnvClock    = "POMATO_CLOCK"
	EnvLogLevel = "POMATO_LOG_LEVEL"
)

// Config is the complete startup configuration.
type Config struct {
	Phases   []domain.Phase
	Cycles   int
	Sound    Sound
	Keys     map[string][]string
	Clock    string
	LogLevel string
	LogFile  string
}

// Sound holds the end-of-phase chime settings.
type Sound struct {
	Mute    bool
	File    string // WAV file; empty uses the built-in tone
	Command string // external player, e.g. "ffplay -nodisp -autoexit"
}

// Default returns the classic schedule: 20 minutes working, 5 minutes
// resting, four cycles.
func Default() Config {
	return Config{
		Phases: []domain.Phase{
			{Name: "working", Duration: 20 * 60},
			{Name: "resting", Duration: 5 * 60},
		},
		Cycles:  4,
		Clock:   ClockPoll,
		LogFile: filepath.Join(".pomato-logs", "pomato.log"),
	}
}

// Seconds is a duration in whole seconds. In YAML it accepts an integer
// number of seconds or a Go duration string such as "20m" or "1m30s".
type Seconds int

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Seconds) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*s = Seconds(n)
		return nil
	}

	var str string
	if err := value.Decode(&str); err != nil {
		return fmt.Errorf("line %d: duration must be seconds or a duration string", value.Line)
	}
	n, err := ParseSeconds(str)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = Seconds(n)
	return nil
}

// ParseSeconds reads a whole number of seconds ("300") or a Go duration
// string ("5m"). Fractions of a second are dropped.
func ParseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: want seconds or a value like 25m", s)
	}
	return int(d / time.Second), nil
}

type yamlPhase struct {
	Name     string  `yaml:"name"`
	Duration Seconds `yaml:"duration"`
}

type yamlConfig struct {
	Phases []yamlPhase `yaml:"phases"`
	Cycles *int        `yaml:"cycles"`
	Sound  struct {
		Mute    bool   `yaml:"mute"`
		File    string `yaml:"file"`
		Command string `yaml:"command"`
	} `yaml:"sound"`
	Keys  map[string][]string `yaml:"keys"`
	Clock string              `yaml:"clock"`
	Log   struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, configFileName), nil
}

// Load reads the YAML file at path over the defaults. A missing file
// yields the defaults unless mustExist is set.
func Load(path string, mustExist bool) (Config, error) {
	cfg := Default()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var fileData yamlConfig
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	applyYAML(&cfg, fileData)
	return cfg, nil
}

func applyYAML(cfg *Config, fileData yamlConfig) {
	if len(fileData.Phases) > 0 {
		cfg.Phases = make([]domain.Phase, 0, len(fileData.Phases))
		for _, p := range fileData.Phases {
			// Durations are checked when the phase runs, not here.
			cfg.Phases = append(cfg.Phases, domain.Phase{Name: p.Name, Duration: int(p.Duration)})
		}
	}
	if fileData.Cycles != nil {
		cfg.Cycles = *fileData.Cycles
	}

	cfg.Sound.Mute = fileData.Sound.Mute
	if fileData.Sound.File != "" {
		cfg.Sound.File = fileData.Sound.File
	}
	if fileData.Sound.Command != "" {
		cfg.Sound.Command = fileData.Sound.Command
	}
	if len(fileData.Keys) > 0 {
		cfg.Keys = fileData.Keys
	}
	if fileData.Clock != "" {
		cfg.Clock = fileData.Clock
	}
	if fileData.Log.Level != "" {
		cfg.LogLevel = fileData.Log.Level
	}
	if fileData.Log.File != "" {
		cfg.LogFile = fileData.Log.File
	}
}

// ApplyEnv overlays POMATO_* variables using lookup (normally
// os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCycles); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCycles, err)
		}
		c.Cycles = n
	}
	if v, ok := lookup(EnvSound); ok && v != "" {
		c.Sound.File = v
	}
	if v, ok := lookup(EnvSoundCmd); ok && v != "" {
		c.Sound.Command = v
	}
	if v, ok := lookup(EnvMute); ok && v != "" {
		mute, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMute, err)
		}
		c.Sound.Mute = mute
	}
	if v, ok := lookup(EnvClock); ok && v != "" {
		c.Clock = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the settings that can be checked up front. Phase
// durations are deliberately left to the countdown.
func (c Config) Validate() error {
	if c.Cycles < 0 {
		return fmt.Errorf("cycles must not be negative, got %d", c.Cycles)
	}
	switch c.Clock {
	case ClockPoll, ClockMonotonic:
	default:
		return fmt.Errorf("unknown clock %q (want %s or %s)", c.Clock, ClockPoll, ClockMonotonic)
	}
	for i, p := range c.Phases {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("phase %d has no name", i+1)
		}
	}
	if _, err := input.ParseKeymap(c.Keys); err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	return nil
}

// Keymap returns the configured key bindings.
func (c Config) Keymap() (input.Keymap, error) {
	return input.ParseKeymap(c.Keys)
}
