// Package input classifies key presses into countdown control signals.
package input

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/hammamikhairi/pomato/internal/domain"
)

// ErrKeyConflict is returned when one key is bound to more than one action.
var ErrKeyConflict = errors.New("key bound to more than one action")

// Action names used in configuration files.
const (
	ActionPause = "pause"
	ActionSkip  = "skip"
	ActionQuit  = "quit"
)

// Keymap maps lower-cased key identifiers to control signals. Any key not
// listed is SignalNone, which the countdown treats as a plain tick.
type Keymap struct {
	Pause []string
	Skip  []string
	Quit  []string
}

// DefaultKeymap returns the standard bindings: space pauses, s skips, q quits.
func DefaultKeymap() Keymap {
	return Keymap{
		Pause: []string{" "},
		Skip:  []string{"s"},
		Quit:  []string{"q"},
	}
}

// ParseKeymap builds a keymap from action -> keys configuration. Actions
// that are missing or empty keep their default keys. Unknown action names
// and keys bound twice are errors.
func ParseKeymap(cfg map[string][]string) (Keymap, error) {
	km := DefaultKeymap()
	for action, keys := range cfg {
		if len(keys) == 0 {
			continue
		}
		norm := make([]string, 0, len(keys))
		for _, k := range keys {
			norm = append(norm, normalize(k))
		}
		switch strings.ToLower(action) {
		case ActionPause:
			km.Pause = norm
		case ActionSkip:
			km.Skip = norm
		case ActionQuit:
			km.Quit = norm
		default:
			return DefaultKeymap(), fmt.Errorf("unknown key action %q", action)
		}
	}

	seen := make(map[string]domain.Signal)
	for _, rule := range km.rules() {
		for _, k := range rule.keys {
			if prev, ok := seen[k]; ok && prev != rule.signal {
				return DefaultKeymap(), fmt.Errorf("key %q for %s and %s: %w", k, prev, rule.signal, ErrKeyConflict)
			}
			seen[k] = rule.signal
		}
	}
	return km, nil
}

// Classify converts a key into a signal. Matching is case-insensitive and
// domain.NoKey is always SignalNone.
func (k Keymap) Classify(pressed string) domain.Signal {
	if pressed == domain.NoKey {
		return domain.SignalNone
	}
	pressed = normalize(pressed)
	for _, rule := range k.rules() {
		for _, candidate := range rule.keys {
			if candidate == pressed {
				return rule.signal
			}
		}
	}
	return domain.SignalNone
}

// Bindings returns the keymap as bubbles key bindings in display order
// (pause, skip, quit), for rendering help text.
func (k Keymap) Bindings() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys(k.Pause...), key.WithHelp(label(k.Pause), "pause")),
		key.NewBinding(key.WithKeys(k.Skip...), key.WithHelp(label(k.Skip), "skip phase")),
		key.NewBinding(key.WithKeys(k.Quit...), key.WithHelp(label(k.Quit), "quit")),
	}
}

type rule struct {
	signal domain.Signal
	keys   []string
}

func (k Keymap) rules() []rule {
	return []rule{
		{domain.SignalQuit, k.Quit},
		{domain.SignalSkip, k.Skip},
		{domain.SignalPause, k.Pause},
	}
}

// normalize lower-cases a key and maps the word "space" to " ", the way
// Bubble Tea reports the space bar.
func normalize(k string) string {
	if k == " " {
		return k
	}
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "space" {
		return " "
	}
	return k
}

func label(keys []string) string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == " " {
			k = "space"
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, "/")
}
