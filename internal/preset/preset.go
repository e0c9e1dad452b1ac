package preset

import (
	"fmt"
	"time"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// Name identifies a preset.
type Name string

const (
	Standard     Name = "standard"
	HighPressure Name = "high_pressure"
	NoAssistance Name = "no_assistance"
)

// Default is used when a session is created without a preset.
const Default = Standard

func minutes(n int64) int64 {
	return (time.Duration(n) * time.Minute).Milliseconds()
}

// Catalog is an ordered, immutable set of presets.
type Catalog struct {
	order   []Name
	configs map[Name]ir.PresetConfig
}

// NewCatalog builds a catalog from entries in the given order.
// Duplicate names and invalid configs are rejected.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	c := &Catalog{configs: make(map[Name]ir.PresetConfig, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("preset name is required")
		}
		if _, dup := c.configs[e.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", e.Name)
		}
		if errs := Validate(e.Config); len(errs) > 0 {
			return nil, fmt.Errorf("preset %q: %w", e.Name, errs[0])
		}
		c.order = append(c.order, e.Name)
		c.configs[e.Name] = e.Config
	}
	return c, nil
}

// Entry pairs a preset name with its config.
type Entry struct {
	Name   Name
	Config ir.PresetConfig
}

var builtin = mustCatalog(
	Entry{Standard, ir.PresetConfig{PrepDuration: minutes(5), CodingDuration: minutes(35), SilentDuration: minutes(5), NudgeBudget: 3}},
	Entry{HighPressure, ir.PresetConfig{PrepDuration: minutes(3), CodingDuration: minutes(25), SilentDuration: minutes(5), NudgeBudget: 1}},
	Entry{NoAssistance, ir.PresetConfig{PrepDuration: minutes(5), CodingDuration: minutes(35), SilentDuration: minutes(5), NudgeBudget: 0}},
)

func mustCatalog(entries ...Entry) *Catalog {
	c, err := NewCatalog(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// Builtin returns the catalog shipped with the engine.
func Builtin() *Catalog {
	return builtin
}

// Resolve returns the config of a preset. An empty name resolves Default.
func (c *Catalog) Resolve(name Name) (ir.PresetConfig, error) {
	if name == "" {
		name = Default
	}
	cfg, ok := c.configs[name]
	if !ok {
		return ir.PresetConfig{}, fmt.Errorf("unknown preset %q", name)
	}
	return cfg, nil
}

// Has reports whether the catalog defines name.
func (c *Catalog) Has(name Name) bool {
	_, ok := c.configs[name]
	return ok
}

// Names returns preset names in declaration order.
func (c *Catalog) Names() []Name {
	out := make([]Name, len(c.order))
	copy(out, c.order)
	return out
}

// Entries returns every preset in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, Entry{Name: n, Config: c.configs[n]})
	}
	return out
}

// Merge returns a catalog holding c's presets followed by other's.
// Presets in other override same-named presets in c, keeping c's order.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{configs: make(map[Name]ir.PresetConfig, len(c.configs)+len(other.configs))}
	for _, n := range c.order {
		merged.order = append(merged.order, n)
		merged.configs[n] = c.configs[n]
	}
	for _, n := range other.order {
		if _, exists := merged.configs[n]; !exists {
			merged.order = append(merged.order, n)
		}
		merged.configs[n] = other.configs[n]
	}
	return merged
}
