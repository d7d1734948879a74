// Package scenario loads and runs reactive scripts written in YAML.
//
// A scenario declares some initial data, the effects, computeds and watchers
// observing it, and a list of steps mutating it. Running a scenario prints a
// trace of every step and every reaction it caused.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrScenario is returned for scenarios that cannot be run: unknown modes,
// steps, computeds or paths that do not resolve.
var ErrScenario = errors.New("reactive: invalid scenario")

// Scenario is one reactive script.
type Scenario struct {
	// Name identifies the scenario in traces and golden files.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Mode selects how Data is observed:
	// reactive (default), shallow, readonly or shallow_readonly.
	Mode string `yaml:"mode,omitempty"`

	// Data is the initial record. Nested maps and lists are allowed.
	Data map[string]any `yaml:"data"`

	Computeds []ComputedSpec `yaml:"computeds,omitempty"`
	Effects   []EffectSpec   `yaml:"effects,omitempty"`
	Watches   []WatchSpec    `yaml:"watches,omitempty"`

	Steps []Step `yaml:"steps"`
}

// EffectSpec declares an effect printing the paths it reads.
type EffectSpec struct {
	Name string `yaml:"name"`

	// Reads are dotted paths into Data, e.g. "user.name" or "items.length".
	Reads []string `yaml:"reads,omitempty"`

	// Computeds are read after Reads.
	Computeds []string `yaml:"computeds,omitempty"`

	// When reads Path, then the Then paths if it was truthy, the Else paths otherwise.
	When *Branch `yaml:"when,omitempty"`

	// Scheduler is empty for synchronous reruns, or "queue" to defer them until a flush step.
	Scheduler string `yaml:"scheduler,omitempty"`
}

type Branch struct {
	Path string   `yaml:"path"`
	Then []string `yaml:"then,omitempty"`
	Else []string `yaml:"else,omitempty"`
}

// ComputedSpec declares a computed combining integer paths.
// Exactly one of Product and Sum is set.
type ComputedSpec struct {
	Name    string   `yaml:"name"`
	Product []string `yaml:"product,omitempty"`
	Sum     []string `yaml:"sum,omitempty"`
}

// WatchSpec declares a watcher of a path, of a whole subtree (Deep), or of a computed.
type WatchSpec struct {
	Name string `yaml:"name"`

	Path     string `yaml:"path,omitempty"`
	Deep     bool   `yaml:"deep,omitempty"`
	Computed string `yaml:"computed,omitempty"`

	Immediate bool `yaml:"immediate,omitempty"`
}

// Step is one mutation or inspection. Exactly one of Set, Delete, Push, Flush and Read is set.
type Step struct {
	Set    string `yaml:"set,omitempty"`
	Delete string `yaml:"delete,omitempty"`
	Push   string `yaml:"push,omitempty"`
	Flush  bool   `yaml:"flush,omitempty"`

	// Read is the name of a computed to print.
	Read string `yaml:"read,omitempty"`

	// Value is written by Set and appended by Push.
	Value any `yaml:"value,omitempty"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Decode parses a scenario, rejecting unknown fields.
func Decode(r io.Reader) (*Scenario, error) {
	var s Scenario

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks the parts of a scenario that do not depend on its data.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrScenario)
	}

	if _, ok := modes[s.Mode]; !ok {
		return fmt.Errorf("%w: unknown mode %q", ErrScenario, s.Mode)
	}

	computeds := make(map[string]bool, len(s.Computeds))
	for _, c := range s.Computeds {
		if (len(c.Product) == 0) == (len(c.Sum) == 0) {
			return fmt.Errorf("%w: computed %q needs one of product or sum", ErrScenario, c.Name)
		}
		computeds[c.Name] = true
	}

	for _, e := range s.Effects {
		if e.Scheduler != "" && e.Scheduler != "queue" {
			return fmt.Errorf("%w: effect %q: unknown scheduler %q", ErrScenario, e.Name, e.Scheduler)
		}
		for _, name := range e.Computeds {
			if !computeds[name] {
				return fmt.Errorf("%w: effect %q: unknown computed %q", ErrScenario, e.Name, name)
			}
		}
	}

	for _, w := range s.Watches {
		switch {
		case w.Computed != "":
			if !computeds[w.Computed] {
				return fmt.Errorf("%w: watch %q: unknown computed %q", ErrScenario, w.Name, w.Computed)
			}
		case w.Path == "" && !w.Deep:
			return fmt.Errorf("%w: watch %q needs a path, deep or computed", ErrScenario, w.Name)
		}
	}

	for i, step := range s.Steps {
		if kinds(step) != 1 {
			return fmt.Errorf("%w: step %d must have exactly one of set, delete, push, flush or read", ErrScenario, i+1)
		}
		if step.Read != "" && !computeds[step.Read] {
			return fmt.Errorf("%w: step %d: unknown computed %q", ErrScenario, i+1, step.Read)
		}
	}

	return nil
}

func kinds(step Step) int {
	n := 0
	for _, set := range []bool{step.Set != "", step.Delete != "", step.Push != "", step.Flush, step.Read != ""} {
		if set {
			n++
		}
	}

	return n
}
