// Package status applies, gates and ticks persistent status conditions.
//
// # Determinism
//
// Only Apply (sleep duration) and CheckCanAct (paralysis and freeze) draw
// from the random source, and each draws at most once per call.
package status

import (
	"fmt"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/msg"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

const (
	// ParalysisSkipChance is the chance a paralyzed creature loses its turn.
	ParalysisSkipChance = 0.25
	// FreezeThawChance is the chance a frozen creature thaws each turn.
	FreezeThawChance = 0.20
	// MaxSleepTurns bounds the sleep duration drawn on application.
	MaxSleepTurns = 3
	// BurnAttackModifier scales physical attack while burned.
	BurnAttackModifier = 0.5
	// ParalysisSpeedModifier scales speed while paralyzed.
	ParalysisSpeedModifier = 0.5
)

var immunities = map[creature.Condition][]typechart.Type{
	creature.Paralysis:     {typechart.Electric},
	creature.Poison:        {typechart.Poison, typechart.Steel},
	creature.BadlyPoisoned: {typechart.Poison, typechart.Steel},
	creature.Burn:          {typechart.Fire},
	creature.Freeze:        {typechart.Ice},
}

// Verdict explains whether a condition can be applied.
type Verdict int

const (
	Allowed Verdict = iota
	AlreadyAffected
	Immune
)

// Check returns the verdict for applying cond to c.
func Check(c *creature.Creature, cond creature.Condition) (Verdict, error) {
	if !cond.Valid() {
		return Allowed, fmt.Errorf("%w: %d", creature.ErrUnknownCondition, int(cond))
	}
	if c.Status != nil && c.Status.Condition != creature.ConditionNone {
		return AlreadyAffected, nil
	}
	for _, t := range immunities[cond] {
		if c.HasType(t) {
			return Immune, nil
		}
	}
	return Allowed, nil
}

// CanApply reports whether cond could be applied to c right now.
// Unknown conditions are never applicable.
func CanApply(c *creature.Creature, cond creature.Condition) bool {
	v, err := Check(c, cond)
	return err == nil && v == Allowed
}

// Apply sets cond on c. Sleep draws its duration from src.
// Callers are expected to have checked CanApply.
func Apply(c *creature.Creature, cond creature.Condition, src rng.Source) error {
	if !cond.Valid() {
		return fmt.Errorf("%w: %d", creature.ErrUnknownCondition, int(cond))
	}
	state := &creature.StatusState{Condition: cond}
	switch cond {
	case creature.Sleep:
		state.TurnsRemaining = 1 + rng.IntN(src, MaxSleepTurns)
	case creature.BadlyPoisoned:
		state.PoisonCounter = 1
	}
	c.Status = state
	return nil
}

// AppliedMessage returns the announcement for cond landing on name.
func AppliedMessage(cond creature.Condition, name string) msg.Message {
	switch cond {
	case creature.Paralysis:
		return msg.New(msg.StatusParalyzed, name)
	case creature.Sleep:
		return msg.New(msg.StatusAsleep, name)
	case creature.Poison:
		return msg.New(msg.StatusPoisoned, name)
	case creature.Burn:
		return msg.New(msg.StatusBurned, name)
	case creature.Freeze:
		return msg.New(msg.StatusFrozen, name)
	case creature.BadlyPoisoned:
		return msg.New(msg.StatusBadlyPoisoned, name)
	default:
		return msg.Message{}
	}
}

// ActResult reports whether a creature may act this turn.
type ActResult struct {
	CanAct  bool
	Message msg.Message
}

// CheckCanAct gates a creature's action on its condition.
func CheckCanAct(c *creature.Creature, src rng.Source) ActResult {
	if c.Status == nil {
		return ActResult{CanAct: true}
	}
	switch c.Status.Condition {
	case creature.Paralysis:
		if src.Next() < ParalysisSkipChance {
			return ActResult{Message: msg.New(msg.FullyParalyzed, c.Name)}
		}
		return ActResult{CanAct: true}
	case creature.Sleep:
		c.Status.TurnsRemaining--
		if c.Status.TurnsRemaining <= 0 {
			c.Status = nil
			return ActResult{CanAct: true, Message: msg.New(msg.WokeUp, c.Name)}
		}
		return ActResult{Message: msg.New(msg.FastAsleep, c.Name)}
	case creature.Freeze:
		if src.Next() < FreezeThawChance {
			c.Status = nil
			return ActResult{CanAct: true, Message: msg.New(msg.Thawed, c.Name)}
		}
		return ActResult{Message: msg.New(msg.FrozenSolid, c.Name)}
	default:
		return ActResult{CanAct: true}
	}
}

// TickResult is the end-of-turn damage owed by a condition.
type TickResult struct {
	Damage  int
	Message msg.Message
}

// EndOfTurn computes residual damage for c's condition. It advances the
// badly-poisoned counter but does not subtract HP.
func EndOfTurn(c *creature.Creature) TickResult {
	if c.Status == nil {
		return TickResult{}
	}
	maxHP := c.Stats.HP
	switch c.Status.Condition {
	case creature.Poison:
		dmg := maxHP / 8
		return TickResult{Damage: dmg, Message: msg.New(msg.HurtByPoison, c.Name, dmg)}
	case creature.Burn:
		dmg := maxHP / 16
		return TickResult{Damage: dmg, Message: msg.New(msg.HurtByBurn, c.Name, dmg)}
	case creature.BadlyPoisoned:
		dmg := maxHP * c.Status.PoisonCounter / 16
		c.Status.PoisonCounter++
		return TickResult{Damage: dmg, Message: msg.New(msg.HurtByPoison, c.Name, dmg)}
	default:
		return TickResult{}
	}
}

// AttackModifier returns the attack multiplier a condition imposes.
func AttackModifier(c *creature.Creature, category creature.Category) float64 {
	if category == creature.CategoryPhysical && c.Condition() == creature.Burn {
		return BurnAttackModifier
	}
	return 1
}

// SpeedModifier returns the speed multiplier a condition imposes.
func SpeedModifier(c *creature.Creature) float64 {
	if c.Condition() == creature.Paralysis {
		return ParalysisSpeedModifier
	}
	return 1
}
