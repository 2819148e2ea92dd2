// Package damage computes move damage.
//
// The formula floors at each documented step:
//
//	effectiveAtk = floor(attack * atkStageMult * statusMod)
//	effectiveDef = floor(defense * defStageMult)
//	levelFactor  = floor(2*level/5 + 2)
//	base         = floor(floor(levelFactor * power * effectiveAtk / max(1, effectiveDef)) / 50) + 2
//	damage       = max(0, floor(base * typeMult * (0.85 + roll*0.15)))
//
// Non-damaging moves (status category or zero power) never reach Calculate.
package damage

import (
	"math"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
)

const (
	// MinRandomFactor is the lowest random multiplier.
	MinRandomFactor = 0.85
	// RandomFactorSpread is added on top of MinRandomFactor at most.
	RandomFactorSpread = 0.15
)

// Input holds every value the formula needs.
type Input struct {
	Level   int
	Power   int
	Attack  int
	Defense int
	// AttackStage and DefenseStage are the relevant stat stages.
	AttackStage  int
	DefenseStage int
	// StatusModifier is the attacker's condition multiplier (0.5 when burned
	// and using a physical move).
	StatusModifier float64
	TypeMultiplier float64
}

// Result is the damage plus the intermediate values, useful for logs and tests.
type Result struct {
	Damage           int
	EffectiveAttack  int
	EffectiveDefense int
	LevelFactor      int
	Base             int
	RandomFactor     float64
	TypeMultiplier   float64
}

// Calculate draws one value from src and returns the damage.
func Calculate(in Input, src rng.Source) Result {
	return CalculateWithRoll(in, src.Next())
}

// CalculateWithRoll computes damage for an explicit roll in [0,1).
func CalculateWithRoll(in Input, roll float64) Result {
	statusMod := in.StatusModifier
	if statusMod == 0 {
		statusMod = 1
	}
	effAtk := EffectiveStat(in.Attack, in.AttackStage, statusMod)
	effDef := EffectiveStat(in.Defense, in.DefenseStage, 1)
	levelFactor := LevelFactor(in.Level)

	def := effDef
	if def < 1 {
		def = 1
	}
	scaled := levelFactor * in.Power * effAtk / def
	base := scaled/50 + 2

	randomFactor := MinRandomFactor + roll*RandomFactorSpread
	dmg := int(math.Floor(float64(base) * in.TypeMultiplier * randomFactor))
	if dmg < 0 {
		dmg = 0
	}
	return Result{
		Damage:           dmg,
		EffectiveAttack:  effAtk,
		EffectiveDefense: effDef,
		LevelFactor:      levelFactor,
		Base:             base,
		RandomFactor:     randomFactor,
		TypeMultiplier:   in.TypeMultiplier,
	}
}

// EffectiveStat applies a stage multiplier and an extra modifier, flooring.
func EffectiveStat(base, stg int, modifier float64) int {
	return int(math.Floor(float64(base) * stage.MultiplierFor(stg, false) * modifier))
}

// LevelFactor returns floor(2*level/5 + 2).
func LevelFactor(level int) int {
	return int(math.Floor(2*float64(level)/5 + 2))
}
