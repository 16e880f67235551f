package scenario

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"mimac-sim/internal/mac"
)

// ErrInvalidSweep marks a sweep definition that cannot be run.
var ErrInvalidSweep = errors.New("invalid sweep")

// Sweep describes a series of runs over increasing offered load. Each rate is
// simulated once for every profile. Zero Nodes or HorizonMS keep the values
// of the loaded simulation config; an empty Profiles list runs all of them.
type Sweep struct {
	Name        string    `yaml:"name,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Rates       []float64 `yaml:"rates"`
	Nodes       int       `yaml:"nodes,omitempty"`
	HorizonMS   float64   `yaml:"horizon_ms,omitempty"`
	Profiles    []string  `yaml:"profiles,omitempty"`
}

// Load reads a YAML sweep definition from disk.
func Load(path string) (*Sweep, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sweep: %w", err)
	}
	var s Sweep
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse sweep: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks rates, sizes and profile names.
func (s Sweep) Validate() error {
	if len(s.Rates) == 0 {
		return fmt.Errorf("%w: no rates", ErrInvalidSweep)
	}
	for _, r := range s.Rates {
		if r <= 0 {
			return fmt.Errorf("%w: rate %g must be positive", ErrInvalidSweep, r)
		}
	}
	if s.Nodes != 0 && s.Nodes < 2 {
		return fmt.Errorf("%w: nodes %d, need at least 2", ErrInvalidSweep, s.Nodes)
	}
	if s.HorizonMS < 0 {
		return fmt.Errorf("%w: negative horizon", ErrInvalidSweep)
	}
	for _, p := range s.Profiles {
		if _, err := mac.ParseProfileID(p); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSweep, err)
		}
	}
	return nil
}

// SortedRates returns the rates in ascending order without duplicates.
func (s Sweep) SortedRates() []float64 {
	r := slices.Clone(s.Rates)
	slices.Sort(r)
	return slices.Compact(r)
}
