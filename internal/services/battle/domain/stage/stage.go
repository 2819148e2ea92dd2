// Package stage implements stat stage multipliers and clamping.
package stage

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Min is the lowest stage a stat can reach.
	Min = -6
	// Max is the highest stage a stat can reach.
	Max = 6
)

// ErrUnknownStat indicates a stat key outside the seven staged stats.
var ErrUnknownStat = errors.New("unknown stat")

// Stat identifies one of the staged stats.
type Stat int

const (
	StatUnspecified Stat = iota
	Attack
	Defense
	SpAttack
	SpDefense
	Speed
	Accuracy
	Evasion
)

var statNames = map[Stat]string{
	Attack:    "attack",
	Defense:   "defense",
	SpAttack:  "sp_attack",
	SpDefense: "sp_defense",
	Speed:     "speed",
	Accuracy:  "accuracy",
	Evasion:   "evasion",
}

var statLabels = map[Stat]string{
	Attack:    "Attack",
	Defense:   "Defense",
	SpAttack:  "Sp. Atk",
	SpDefense: "Sp. Def",
	Speed:     "Speed",
	Accuracy:  "accuracy",
	Evasion:   "evasiveness",
}

// String returns the stable key for the stat.
func (s Stat) String() string {
	if name, ok := statNames[s]; ok {
		return name
	}
	return "unspecified"
}

// Label returns the display name used in battle messages.
func (s Stat) Label() string {
	return statLabels[s]
}

// Valid reports whether s names a staged stat.
func (s Stat) Valid() bool {
	_, ok := statNames[s]
	return ok
}

// ParseStat maps a key such as "sp_attack" or "spAtk" to a Stat.
func ParseStat(raw string) (Stat, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", ".", "", " ", "").Replace(key)
	switch key {
	case "attack", "atk":
		return Attack, nil
	case "defense", "def":
		return Defense, nil
	case "spattack", "spatk", "specialattack":
		return SpAttack, nil
	case "spdefense", "spdef", "specialdefense":
		return SpDefense, nil
	case "speed", "spe":
		return Speed, nil
	case "accuracy", "acc":
		return Accuracy, nil
	case "evasion", "eva":
		return Evasion, nil
	default:
		return StatUnspecified, fmt.Errorf("%w: %q", ErrUnknownStat, raw)
	}
}

// MultiplierFor returns the stat multiplier for a stage.
// Standard stats use (2+s)/2 and 2/(2-s); accuracy and evasion use thirds.
// Stages outside [Min, Max] are clamped first.
func MultiplierFor(stage int, accuracyOrEvasion bool) float64 {
	stage = Clamp(stage)
	base := 2.0
	if accuracyOrEvasion {
		base = 3.0
	}
	if stage >= 0 {
		return (base + float64(stage)) / base
	}
	return base / (base - float64(stage))
}

// ApplyChange adds delta to current and clamps the result to [Min, Max].
// clamped reports whether the raw sum fell outside the range. Deltas wider
// than the whole range are bounded first so the sum cannot overflow; any
// such delta still lands outside the range and reports clamped.
func ApplyChange(current, delta int) (next int, clamped bool) {
	span := Max - Min + 1
	delta = max(-span, min(span, delta))
	raw := Clamp(current) + delta
	next = Clamp(raw)
	return next, next != raw
}

// Clamp bounds a stage to [Min, Max].
func Clamp(stage int) int {
	if stage < Min {
		return Min
	}
	if stage > Max {
		return Max
	}
	return stage
}

// Stages holds the seven independently clamped stage values of a creature.
type Stages struct {
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
	Accuracy  int `json:"accuracy"`
	Evasion   int `json:"evasion"`
}

func (s *Stages) field(stat Stat) (*int, error) {
	switch stat {
	case Attack:
		return &s.Attack, nil
	case Defense:
		return &s.Defense, nil
	case SpAttack:
		return &s.SpAttack, nil
	case SpDefense:
		return &s.SpDefense, nil
	case Speed:
		return &s.Speed, nil
	case Accuracy:
		return &s.Accuracy, nil
	case Evasion:
		return &s.Evasion, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStat, int(stat))
	}
}

// Get returns the stage for stat.
func (s Stages) Get(stat Stat) (int, error) {
	ptr, err := s.field(stat)
	if err != nil {
		return 0, err
	}
	return *ptr, nil
}

// Set stores a clamped stage for stat.
func (s *Stages) Set(stat Stat, value int) error {
	ptr, err := s.field(stat)
	if err != nil {
		return err
	}
	*ptr = Clamp(value)
	return nil
}

// Change applies delta to stat and returns the previous and new stage.
func (s *Stages) Change(stat Stat, delta int) (before, after int, clamped bool, err error) {
	ptr, err := s.field(stat)
	if err != nil {
		return 0, 0, false, err
	}
	before = *ptr
	after, clamped = ApplyChange(before, delta)
	*ptr = after
	return before, after, clamped, nil
}

// Multiplier returns the multiplier for the current stage of stat.
func (s Stages) Multiplier(stat Stat) (float64, error) {
	v, err := s.Get(stat)
	if err != nil {
		return 0, err
	}
	return MultiplierFor(v, stat == Accuracy || stat == Evasion), nil
}

// Reset zeroes every stage.
func (s *Stages) Reset() {
	*s = Stages{}
}
