// Package effect resolves a move's secondary effect.
package effect

import (
	"fmt"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/msg"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/status"
)

// Result reports whether the effect changed state and what to log.
// Message is empty when the chance roll failed.
type Result struct {
	Applied bool
	Message msg.Message
}

// ResolveTarget returns the creature an effect lands on.
func ResolveTarget(t creature.Target, attacker, defender *creature.Creature) *creature.Creature {
	if t == creature.TargetSelf {
		return attacker
	}
	return defender
}

// Roll draws once from src and reports whether an effect with the given
// percent chance fires.
func Roll(chance int, src rng.Source) bool {
	return src.Next()*100 < float64(chance)
}

// Resolve rolls the effect's chance and applies it to the resolved target.
// Errors are reserved for malformed effects; game outcomes such as a capped
// stage or an immune target come back as messages with Applied false.
func Resolve(e creature.Effect, attacker, defender *creature.Creature, src rng.Source) (Result, error) {
	if e == nil {
		return Result{}, nil
	}
	target := ResolveTarget(e.EffectTarget(), attacker, defender)
	if !Roll(e.Probability(), src) {
		return Result{}, nil
	}
	switch e := e.(type) {
	case creature.StatChange:
		return resolveStatChange(e, target)
	case creature.StatusApply:
		return resolveStatus(e, target, src)
	case creature.Heal:
		return resolveHeal(e, target), nil
	default:
		return Result{}, fmt.Errorf("unsupported effect %T", e)
	}
}

func resolveStatChange(e creature.StatChange, target *creature.Creature) (Result, error) {
	before, after, _, err := target.Stages.Change(e.Stat, e.Stages)
	if err != nil {
		return Result{}, err
	}
	label := e.Stat.Label()
	moved := after - before
	switch {
	case moved == 0 && e.Stages > 0:
		return Result{Message: msg.New(msg.StatWontGoHigher, target.Name, label)}, nil
	case moved == 0:
		return Result{Message: msg.New(msg.StatWontGoLower, target.Name, label)}, nil
	case moved >= 2:
		return Result{Applied: true, Message: msg.New(msg.StatRoseSharply, target.Name, label)}, nil
	case moved > 0:
		return Result{Applied: true, Message: msg.New(msg.StatRose, target.Name, label)}, nil
	case moved <= -2:
		return Result{Applied: true, Message: msg.New(msg.StatFellHarshly, target.Name, label)}, nil
	default:
		return Result{Applied: true, Message: msg.New(msg.StatFell, target.Name, label)}, nil
	}
}

func resolveStatus(e creature.StatusApply, target *creature.Creature, src rng.Source) (Result, error) {
	verdict, err := status.Check(target, e.Condition)
	if err != nil {
		return Result{}, err
	}
	switch verdict {
	case status.Immune:
		return Result{Message: msg.New(msg.StatusImmune, target.Name)}, nil
	case status.AlreadyAffected:
		return Result{Message: msg.New(msg.StatusAlready, target.Name, target.Condition().String())}, nil
	}
	if err := status.Apply(target, e.Condition, src); err != nil {
		return Result{}, err
	}
	return Result{Applied: true, Message: status.AppliedMessage(e.Condition, target.Name)}, nil
}

func resolveHeal(e creature.Heal, target *creature.Creature) Result {
	if target.HP >= target.Stats.HP {
		return Result{Message: msg.New(msg.HPFull, target.Name)}
	}
	amount := target.Stats.HP * e.Percent / 100
	if amount < 1 {
		amount = 1
	}
	restored := target.Restore(amount)
	return Result{Applied: true, Message: msg.New(msg.Healed, target.Name, restored)}
}

// Stat is a convenience for building a StatChange from string keys.
func Stat(key string, stages int, target creature.Target, chance int) (creature.StatChange, error) {
	stat, err := stage.ParseStat(key)
	if err != nil {
		return creature.StatChange{}, err
	}
	return creature.StatChange{Stat: stat, Stages: stages, Target: target, Chance: chance}, nil
}
