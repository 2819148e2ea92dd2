// Package typechart resolves type effectiveness multipliers.
//
// The chart itself comes from a content provider. Missing pairs count as
// neutral, so an incomplete chart still produces valid multipliers.
package typechart

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Type names an elemental type. Values are lowercase.
type Type string

const (
	Normal   Type = "normal"
	Fire     Type = "fire"
	Water    Type = "water"
	Electric Type = "electric"
	Grass    Type = "grass"
	Ice      Type = "ice"
	Fighting Type = "fighting"
	Poison   Type = "poison"
	Ground   Type = "ground"
	Flying   Type = "flying"
	Psychic  Type = "psychic"
	Bug      Type = "bug"
	Rock     Type = "rock"
	Ghost    Type = "ghost"
	Dragon   Type = "dragon"
	Dark     Type = "dark"
	Steel    Type = "steel"
	Fairy    Type = "fairy"
)

// ErrInvalidMultiplier indicates a chart entry outside {0, 0.5, 1, 2}.
var ErrInvalidMultiplier = errors.New("type multiplier must be one of 0, 0.5, 1, 2")

// ErrEmptyType indicates a blank type name.
var ErrEmptyType = errors.New("type name is required")

// ParseType normalizes a type name.
func ParseType(raw string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", ErrEmptyType
	}
	return Type(name), nil
}

// Label returns the display form of the type ("Electric").
func (t Type) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// Table maps attacking type to defending type to multiplier.
// The zero value and a nil *Table are valid and treat every pair as neutral.
type Table struct {
	entries map[Type]map[Type]float64
}

// NewTable validates and copies entries into a Table.
func NewTable(entries map[Type]map[Type]float64) (*Table, error) {
	t := &Table{entries: make(map[Type]map[Type]float64, len(entries))}
	for attacking, row := range entries {
		for defending, mult := range row {
			if err := t.Set(attacking, defending, mult); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// Set records a single attacking/defending multiplier.
func (t *Table) Set(attacking, defending Type, mult float64) error {
	if attacking == "" || defending == "" {
		return ErrEmptyType
	}
	switch mult {
	case 0, 0.5, 1, 2:
	default:
		return fmt.Errorf("%s -> %s = %v: %w", attacking, defending, mult, ErrInvalidMultiplier)
	}
	if t.entries == nil {
		t.entries = make(map[Type]map[Type]float64)
	}
	row := t.entries[attacking]
	if row == nil {
		row = make(map[Type]float64)
		t.entries[attacking] = row
	}
	row[defending] = mult
	return nil
}

// Lookup returns the single-type multiplier, defaulting to 1.
func (t *Table) Lookup(attacking, defending Type) float64 {
	if t == nil {
		return 1
	}
	row, ok := t.entries[attacking]
	if !ok {
		return 1
	}
	mult, ok := row[defending]
	if !ok {
		return 1
	}
	return mult
}

// Multiplier combines the single-type multipliers for each defending type.
// With the chart restricted to {0, 0.5, 1, 2} and at most two defending
// types, the result is one of {0, 0.25, 0.5, 1, 2, 4}.
func (t *Table) Multiplier(attacking Type, defending ...Type) float64 {
	mult := 1.0
	for _, d := range defending {
		mult *= t.Lookup(attacking, d)
	}
	return mult
}

// Types lists every type mentioned in the table, sorted.
func (t *Table) Types() []Type {
	if t == nil {
		return nil
	}
	seen := make(map[Type]struct{})
	for attacking, row := range t.entries {
		seen[attacking] = struct{}{}
		for defending := range row {
			seen[defending] = struct{}{}
		}
	}
	out := make([]Type, 0, len(seen))
	for typ := range seen {
		out = append(out, typ)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Effectiveness classifies a combined multiplier.
type Effectiveness int

const (
	EffectivenessNeutral Effectiveness = iota
	EffectivenessNone
	EffectivenessNotVery
	EffectivenessSuper
)

func (e Effectiveness) String() string {
	switch e {
	case EffectivenessNone:
		return "no_effect"
	case EffectivenessNotVery:
		return "not_very_effective"
	case EffectivenessSuper:
		return "super_effective"
	default:
		return "neutral"
	}
}

// Classify maps a combined multiplier to an Effectiveness bucket.
func Classify(mult float64) Effectiveness {
	switch {
	case mult == 0:
		return EffectivenessNone
	case mult < 1:
		return EffectivenessNotVery
	case mult > 1:
		return EffectivenessSuper
	default:
		return EffectivenessNeutral
	}
}
