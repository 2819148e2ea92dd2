// Package creature defines the combat-ready creature and move model.
package creature

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

const (
	// MaxMoves is the largest move list a creature can carry.
	MaxMoves = 4
	// MaxTypes is the largest number of types a creature can have.
	MaxTypes = 2
	// MaxLevel is the highest supported level.
	MaxLevel = 100
)

var (
	// ErrInvalidCreature indicates a creature definition violates the model.
	ErrInvalidCreature = errors.New("invalid creature")
	// ErrInvalidMove indicates a move definition violates the model.
	ErrInvalidMove = errors.New("invalid move")
	// ErrUnknownCategory indicates a move category key outside the enumeration.
	ErrUnknownCategory = errors.New("unknown move category")
)

// Stats holds base combat stats.
type Stats struct {
	HP        int `json:"hp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
}

// Creature is one combat-ready instance owned by a battle session.
type Creature struct {
	ID     string
	Name   string
	Types  []typechart.Type
	Level  int
	Stats  Stats
	HP     int
	Stages stage.Stages
	Status *StatusState
	Moves  []Move
}

// Fainted reports whether the creature has no HP left.
func (c *Creature) Fainted() bool {
	return c.HP <= 0
}

// HasType reports whether any of the creature's types equals t.
func (c *Creature) HasType(t typechart.Type) bool {
	for _, own := range c.Types {
		if own == t {
			return true
		}
	}
	return false
}

// Condition returns the active condition or ConditionNone.
func (c *Creature) Condition() Condition {
	if c.Status == nil {
		return ConditionNone
	}
	return c.Status.Condition
}

// Move finds a move by id.
func (c *Creature) Move(id string) (Move, bool) {
	for _, m := range c.Moves {
		if m.ID == id {
			return m, true
		}
	}
	return Move{}, false
}

// MoveIDs lists the creature's move ids in order.
func (c *Creature) MoveIDs() []string {
	ids := make([]string, 0, len(c.Moves))
	for _, m := range c.Moves {
		ids = append(ids, m.ID)
	}
	return ids
}

// Damage subtracts amount from HP, never dropping below zero.
// It returns the HP actually removed.
func (c *Creature) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > c.HP {
		amount = c.HP
	}
	c.HP -= amount
	return amount
}

// Restore adds amount to HP, never exceeding max HP.
// It returns the HP actually restored.
func (c *Creature) Restore(amount int) int {
	if amount <= 0 {
		return 0
	}
	if missing := c.Stats.HP - c.HP; amount > missing {
		amount = missing
	}
	c.HP += amount
	return amount
}

// Clone returns an independent deep copy.
func (c Creature) Clone() Creature {
	out := c
	out.Types = append([]typechart.Type(nil), c.Types...)
	out.Moves = append([]Move(nil), c.Moves...)
	if c.Status != nil {
		st := *c.Status
		out.Status = &st
	}
	return out
}

// Fresh returns a deep copy at full HP with zero stages and no status.
func (c Creature) Fresh() Creature {
	out := c.Clone()
	out.HP = out.Stats.HP
	out.Stages.Reset()
	out.Status = nil
	return out
}

// Validate checks the creature definition.
func (c Creature) Validate() error {
	label := c.Name
	if strings.TrimSpace(label) == "" {
		label = c.ID
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCreature)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: %s: name is required", ErrInvalidCreature, label)
	}
	if len(c.Types) == 0 || len(c.Types) > MaxTypes {
		return fmt.Errorf("%w: %s: must have 1-%d types, got %d", ErrInvalidCreature, label, MaxTypes, len(c.Types))
	}
	for _, t := range c.Types {
		if t == "" {
			return fmt.Errorf("%w: %s: blank type", ErrInvalidCreature, label)
		}
	}
	if c.Level < 1 || c.Level > MaxLevel {
		return fmt.Errorf("%w: %s: level %d out of range 1-%d", ErrInvalidCreature, label, c.Level, MaxLevel)
	}
	s := c.Stats
	if s.HP <= 0 || s.Attack <= 0 || s.Defense <= 0 || s.SpAttack <= 0 || s.SpDefense <= 0 || s.Speed <= 0 {
		return fmt.Errorf("%w: %s: stats must be positive", ErrInvalidCreature, label)
	}
	if c.HP < 0 || c.HP > s.HP {
		return fmt.Errorf("%w: %s: hp %d out of range 0-%d", ErrInvalidCreature, label, c.HP, s.HP)
	}
	if len(c.Moves) > MaxMoves {
		return fmt.Errorf("%w: %s: at most %d moves, got %d", ErrInvalidCreature, label, MaxMoves, len(c.Moves))
	}
	seen := make(map[string]struct{}, len(c.Moves))
	for _, m := range c.Moves {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("%w: %s: duplicate move %q", ErrInvalidCreature, label, m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}
