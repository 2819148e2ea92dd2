// Package ai selects moves for computer-controlled creatures.
//
// Every strategy draws exactly one value from the shared random source per
// decision, so the draw sequence of a battle does not depend on which
// strategy is plugged in.
package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/status"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

var (
	// ErrNoMoves indicates the attacker has no moves to choose from.
	ErrNoMoves = errors.New("attacker has no moves")
	// ErrUnknownStrategy indicates a strategy name that is not registered.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrForeignMove indicates a strategy returned a move the attacker lacks.
	ErrForeignMove = errors.New("strategy chose a move the attacker does not know")
)

// Strategy picks a move id from attacker's moves.
type Strategy interface {
	ChooseMove(attacker, defender *creature.Creature, src rng.Source) (string, error)
}

// Names lists the built-in strategy names.
var Names = []string{"random", "strategic"}

// New returns a built-in strategy by name.
func New(name string, chart *typechart.Table) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "random":
		return Random{}, nil
	case "", "strategic":
		return Strategic{Chart: chart}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Choose runs s and verifies the result belongs to attacker.
func Choose(s Strategy, attacker, defender *creature.Creature, src rng.Source) (string, error) {
	id, err := s.ChooseMove(attacker, defender, src)
	if err != nil {
		return "", err
	}
	if _, ok := attacker.Move(id); !ok {
		return "", fmt.Errorf("%w: %q for %s", ErrForeignMove, id, attacker.Name)
	}
	return id, nil
}

// Random picks uniformly among the attacker's moves.
type Random struct{}

// ChooseMove implements Strategy.
func (Random) ChooseMove(attacker, _ *creature.Creature, src rng.Source) (string, error) {
	if len(attacker.Moves) == 0 {
		return "", ErrNoMoves
	}
	return attacker.Moves[rng.IntN(src, len(attacker.Moves))].ID, nil
}

const (
	// sameTypeBonus rewards moves sharing a type with the attacker.
	sameTypeBonus = 1.5
	// statusMoveScore is the flat score of a useful non-damaging move.
	statusMoveScore = 20.0
	// damageTier lifts every damaging move that can land above any
	// non-damaging move. Non-damaging scores stay below 2*statusMoveScore.
	damageTier   = 1000.0
	scoreEpsilon = 1e-9
)

// Strategic scores moves by expected damage against the defender's types
// and breaks ties with one draw. Any damaging move the defender is not
// immune to outranks every non-damaging move.
type Strategic struct {
	Chart *typechart.Table
}

// ChooseMove implements Strategy.
func (s Strategic) ChooseMove(attacker, defender *creature.Creature, src rng.Source) (string, error) {
	if len(attacker.Moves) == 0 {
		return "", ErrNoMoves
	}
	best := -1.0
	var candidates []string
	for _, m := range attacker.Moves {
		score := s.Score(m, attacker, defender)
		switch {
		case score > best+scoreEpsilon:
			best = score
			candidates = append(candidates[:0], m.ID)
		case score >= best-scoreEpsilon:
			candidates = append(candidates, m.ID)
		}
	}
	return candidates[rng.IntN(src, len(candidates))], nil
}

// Score estimates how useful m is right now.
func (s Strategic) Score(m creature.Move, attacker, defender *creature.Creature) float64 {
	if m.Damaging() {
		mult := s.Chart.Multiplier(m.Type, defender.Types...)
		if mult == 0 {
			return 0
		}
		score := float64(m.Power) * mult
		if attacker.HasType(m.Type) {
			score *= sameTypeBonus
		}
		if m.Accuracy > 0 {
			score *= float64(m.Accuracy) / 100
		}
		return damageTier + score
	}
	if m.Effect == nil {
		return 0
	}
	target := defender
	if m.Effect.EffectTarget() == creature.TargetSelf {
		target = attacker
	}
	switch e := m.Effect.(type) {
	case creature.StatusApply:
		if !status.CanApply(target, e.Condition) {
			return 0
		}
	case creature.StatChange:
		current, err := target.Stages.Get(e.Stat)
		if err != nil {
			return 0
		}
		if next, _ := stage.ApplyChange(current, e.Stages); next == current {
			return 0
		}
	case creature.Heal:
		if target.HP >= target.Stats.HP {
			return 0
		}
		return statusMoveScore * 2 * (1 - float64(target.HP)/float64(target.Stats.HP))
	}
	return statusMoveScore
}
