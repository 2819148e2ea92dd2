package creature

import (
	"fmt"
	"strings"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

// Category is the closed set of move categories.
type Category int

const (
	CategoryPhysical Category = iota + 1
	CategorySpecial
	CategoryStatus
)

func (c Category) String() string {
	switch c {
	case CategoryPhysical:
		return "physical"
	case CategorySpecial:
		return "special"
	case CategoryStatus:
		return "status"
	default:
		return "unspecified"
	}
}

// ParseCategory maps a category key to a Category.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "physical":
		return CategoryPhysical, nil
	case "special":
		return CategorySpecial, nil
	case "status":
		return CategoryStatus, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
}

// Move is one action a creature can take.
type Move struct {
	ID   string
	Name string
	Type typechart.Type
	// Power is 0 for non-damaging moves.
	Power int
	// Accuracy is 0 for moves that always hit, otherwise 1-100.
	Accuracy int
	Category Category
	Effect   Effect
}

// Damaging reports whether the move goes through the damage calculator.
func (m Move) Damaging() bool {
	return m.Category != CategoryStatus && m.Power > 0
}

// Validate checks the move definition.
func (m Move) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidMove)
	}
	if m.Type == "" {
		return fmt.Errorf("%w: %s: type is required", ErrInvalidMove, m.ID)
	}
	switch m.Category {
	case CategoryPhysical, CategorySpecial, CategoryStatus:
	default:
		return fmt.Errorf("%w: %s: %w", ErrInvalidMove, m.ID, ErrUnknownCategory)
	}
	if m.Power < 0 {
		return fmt.Errorf("%w: %s: power must be non-negative", ErrInvalidMove, m.ID)
	}
	if m.Accuracy < 0 || m.Accuracy > 100 {
		return fmt.Errorf("%w: %s: accuracy %d out of range 0-100", ErrInvalidMove, m.ID, m.Accuracy)
	}
	if m.Effect != nil {
		if err := m.Effect.validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidMove, m.ID, err)
		}
	}
	return nil
}

// Target selects which creature an effect lands on.
type Target int

const (
	TargetOpponent Target = iota
	TargetSelf
)

func (t Target) String() string {
	if t == TargetSelf {
		return "self"
	}
	return "opponent"
}

// ParseTarget maps "self" or "opponent" to a Target. Blank means opponent.
func ParseTarget(raw string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "opponent", "foe", "target":
		return TargetOpponent, nil
	case "self", "user":
		return TargetSelf, nil
	default:
		return 0, fmt.Errorf("unknown effect target %q", raw)
	}
}

// Effect is a move's optional secondary effect.
// Implementations are StatChange, StatusApply and Heal.
type Effect interface {
	// EffectTarget returns who the effect lands on.
	EffectTarget() Target
	// Probability returns the percent chance the effect fires, 0-100.
	Probability() int
	validate() error
}

// DefaultChance is the chance content loaders store when a definition
// omits one.
const DefaultChance = 100

func validateChance(chance int) error {
	if chance < 0 || chance > 100 {
		return fmt.Errorf("chance %d out of range 0-100", chance)
	}
	return nil
}

// StatChange raises or lowers one stat stage.
type StatChange struct {
	Stat   stage.Stat
	Stages int
	Target Target
	// Chance is the percent chance to fire; zero never fires.
	Chance int
}

func (e StatChange) EffectTarget() Target { return e.Target }
func (e StatChange) Probability() int { return e.Chance }

func (e StatChange) validate() error {
	if !e.Stat.Valid() {
		return stage.ErrUnknownStat
	}
	if e.Stages == 0 {
		return fmt.Errorf("stat change of 0 stages")
	}
	return validateChance(e.Chance)
}

// StatusApply inflicts a status condition.
type StatusApply struct {
	Condition Condition
	Target    Target
	// Chance is the percent chance to fire; zero never fires.
	Chance int
}

func (e StatusApply) EffectTarget() Target { return e.Target }
func (e StatusApply) Probability() int { return e.Chance }

func (e StatusApply) validate() error {
	if !e.Condition.Valid() {
		return ErrUnknownCondition
	}
	return validateChance(e.Chance)
}

// Heal restores a percentage of max HP.
type Heal struct {
	Percent int
	Target  Target
	// Chance is the percent chance to fire; zero never fires.
	Chance int
}

func (e Heal) EffectTarget() Target { return e.Target }
func (e Heal) Probability() int { return e.Chance }

func (e Heal) validate() error {
	if e.Percent <= 0 || e.Percent > 100 {
		return fmt.Errorf("heal percent %d out of range 1-100", e.Percent)
	}
	return validateChance(e.Chance)
}
