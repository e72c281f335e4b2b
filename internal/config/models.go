package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/muurk/canplot/internal/signal"
)

// Registry represents the entire user configuration file.
// It stores named signal sets and application preferences.
type Registry struct {
	Version     int                   `yaml:"version"`
	Sets        map[string]*SignalSet `yaml:"sets,omitempty"` // Keyed by set name
	Preferences *Preferences          `yaml:"preferences,omitempty"`
}

// SignalSet is a named group of signal configurations that are plotted together.
type SignalSet struct {
	Description string          `yaml:"description,omitempty"`
	UpdatedAt   time.Time       `yaml:"updated_at,omitempty"`
	Signals     []signal.Config `yaml:"signals"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	Workers       int    `yaml:"workers"`        // ExtractMultiple goroutines, 0 = GOMAXPROCS
	DefaultFormat string `yaml:"default_format"` // Output format when --format is not given
}

// SignalColors is the palette assigned round-robin to new signals
var SignalColors = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
	"#bcbd22",
	"#17becf",
}

func defaultPreferences() *Preferences {
	return &Preferences{
		Workers:       0,
		DefaultFormat: "table",
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Sets:        make(map[string]*SignalSet),
		Preferences: defaultPreferences(),
	}
}

// GetSet retrieves a signal set by name.
// Returns nil if the set doesn't exist in the registry.
func (r *Registry) GetSet(name string) *SignalSet {
	return r.Sets[name]
}

// EnsureSet ensures a signal set exists in the registry and returns it.
func (r *Registry) EnsureSet(name string) *SignalSet {
	if r.Sets == nil {
		r.Sets = make(map[string]*SignalSet)
	}

	if set, exists := r.Sets[name]; exists {
		return set
	}

	set := &SignalSet{Signals: []signal.Config{}}
	r.Sets[name] = set
	return set
}

// SetNames returns the set names in sorted order.
func (r *Registry) SetNames() []string {
	names := make([]string, 0, len(r.Sets))
	for name := range r.Sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteSet removes a set. Reports whether it existed.
func (r *Registry) DeleteSet(name string) bool {
	if _, ok := r.Sets[name]; !ok {
		return false
	}
	delete(r.Sets, name)
	return true
}

// AddSignal appends cfg to the named set, creating the set if needed.
// A missing ID is generated and a missing color is taken from SignalColors
// based on the set's current size. The stored config is returned.
func (r *Registry) AddSignal(setName string, cfg signal.Config) signal.Config {
	set := r.EnsureSet(setName)

	if cfg.ID == "" {
		cfg.ID = NewSignalID()
	}
	if cfg.Color == "" {
		cfg.Color = SignalColors[len(set.Signals)%len(SignalColors)]
	}

	set.Signals = append(set.Signals, cfg)
	set.UpdatedAt = time.Now()
	return cfg
}

// RemoveSignal deletes the signal with the given ID from a set.
// Reports whether a signal was removed.
func (r *Registry) RemoveSignal(setName, id string) bool {
	set := r.GetSet(setName)
	if set == nil {
		return false
	}

	for i, cfg := range set.Signals {
		if cfg.ID == id {
			set.Signals = append(set.Signals[:i], set.Signals[i+1:]...)
			set.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// NewSignalID returns an identifier of the form signal_<unixnano>_<random>.
func NewSignalID() string {
	var buf [5]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("signal_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("signal_%d_%s", time.Now().UnixNano(), hex.EncodeToString(buf[:]))
}
