package draw

import (
	"fmt"
	"sort"

	"github.com/osse101/PullBot_Go/internal/domain"
)

// Entry is one category with its relative weight
type Entry struct {
	Category string `json:"category"`
	Weight   int    `json:"weight"`
}

// Table is an ordered weighted table; order breaks ties
type Table []Entry

// Total returns the sum of all weights
func (t Table) Total() int {
	total := 0
	for _, e := range t {
		total += e.Weight
	}
	return total
}

// Slot is one position in the packet. Chance in (0,1) gates the slot behind
// an independent coin flip; zero or one means the slot always draws.
type Slot struct {
	Name   string  `json:"name"`
	Table  string  `json:"table"`
	Count  int     `json:"count"`
	Chance float64 `json:"chance,omitempty"`
}

// Cohort is a user classification that can replace slot tables and asset
// directories. Lower Priority is checked first.
type Cohort struct {
	Name     string            `json:"name"`
	Priority int               `json:"priority"`
	Members  []string          `json:"members,omitempty"`
	Tables   map[string]Table  `json:"tables,omitempty"`
	Assets   map[string]string `json:"assets,omitempty"`
}

// Config is the immutable draw configuration loaded at startup
type Config struct {
	AssetRoot  string            `json:"asset_root"`
	Slots      []Slot            `json:"slots"`
	Tables     map[string]Table  `json:"tables"`
	Categories map[string]string `json:"categories"`
	Cohorts    []Cohort          `json:"cohorts,omitempty"`
}

// Validate checks references and weights so defects surface at startup
func (c *Config) Validate() error {
	if len(c.Slots) == 0 {
		return fmt.Errorf("%w: no slots configured", domain.ErrConfigurationDefect)
	}
	for _, s := range c.Slots {
		table, ok := c.Tables[s.Table]
		if !ok {
			return fmt.Errorf("%w: slot %q references unknown table %q", domain.ErrConfigurationDefect, s.Name, s.Table)
		}
		if s.Count <= 0 {
			return fmt.Errorf("%w: slot %q must draw at least once", domain.ErrConfigurationDefect, s.Name)
		}
		if s.Chance < 0 || s.Chance > 1 {
			return fmt.Errorf("%w: slot %q chance %v outside [0,1]", domain.ErrConfigurationDefect, s.Name, s.Chance)
		}
		if err := c.validateTable(s.Name, table); err != nil {
			return err
		}
	}

	slots := make(map[string]bool, len(c.Slots))
	for _, s := range c.Slots {
		slots[s.Name] = true
	}

	seen := map[string]bool{}
	for _, co := range c.Cohorts {
		if co.Name == "" || seen[co.Name] {
			return fmt.Errorf("%w: cohort names must be unique and non-empty (%q)", domain.ErrConfigurationDefect, co.Name)
		}
		seen[co.Name] = true
		for slot, table := range co.Tables {
			if !slots[slot] {
				return fmt.Errorf("%w: cohort %q overrides unknown slot %q", domain.ErrConfigurationDefect, co.Name, slot)
			}
			if err := c.validateTable(co.Name+"/"+slot, table); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) validateTable(name string, t Table) error {
	if t.Total() <= 0 {
		return fmt.Errorf("%w: table %q has no positive weight", domain.ErrConfigurationDefect, name)
	}
	for _, e := range t {
		if e.Weight < 0 {
			return fmt.Errorf("%w: table %q has negative weight for %q", domain.ErrConfigurationDefect, name, e.Category)
		}
		if _, ok := c.Categories[e.Category]; !ok {
			return fmt.Errorf("%w: table %q references unknown category %q", domain.ErrConfigurationDefect, name, e.Category)
		}
	}
	return nil
}

// orderedCohorts returns cohorts sorted by priority, stable on config order
func (c *Config) orderedCohorts() []Cohort {
	out := append([]Cohort(nil), c.Cohorts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// DefaultConfig returns the standard packet layout: four common slots, three
// uncommon, one rare and one extra slot behind a 10% coin flip.
func DefaultConfig() Config {
	return Config{
		AssetRoot: "assets/cards",
		Slots: []Slot{
			{Name: SlotCommon, Table: SlotCommon, Count: 4},
			{Name: SlotUncommon, Table: SlotUncommon, Count: 3},
			{Name: SlotRare, Table: SlotRare, Count: 1},
			{Name: SlotExtra, Table: SlotExtra, Count: 1, Chance: 0.1},
		},
		Tables: map[string]Table{
			SlotCommon:   {{Category: domain.RarityCommon, Weight: 1}},
			SlotUncommon: {{Category: domain.RarityUncommon, Weight: 1}},
			SlotRare:     {{Category: domain.RarityRare, Weight: 9}, {Category: domain.RarityLegendary, Weight: 1}},
			SlotExtra:    {{Category: domain.RarityRare, Weight: 3}, {Category: domain.RarityLegendary, Weight: 1}},
		},
		Categories: map[string]string{
			domain.RarityCommon:    domain.RarityCommon,
			domain.RarityUncommon:  domain.RarityUncommon,
			domain.RarityRare:      domain.RarityRare,
			domain.RarityLegendary: domain.RarityLegendary,
		},
	}
}
