package battle

import (
	"fmt"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/ai"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/damage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/effect"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/msg"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/status"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

// Choices are the move ids for one turn. An empty Opponent lets the
// session's strategy choose.
type Choices struct {
	Player   string
	Opponent string
}

// TurnResult summarizes one resolved turn.
type TurnResult struct {
	Turn   int
	Lines  []string
	Phase  Phase
	Winner Side
}

// Submit resolves a turn with the player's move and a strategy-chosen
// opponent move.
func (s *Session) Submit(moveID string) (TurnResult, error) {
	return s.Resolve(Choices{Player: moveID})
}

// Choose asks strategy for side's move, drawing from the session's source.
// It lets an AI play the player side without a second random stream.
func (s *Session) Choose(side Side, strategy ai.Strategy) (string, error) {
	switch s.phase {
	case PhaseEnded:
		return "", ErrBattleEnded
	case PhaseResolving:
		return "", ErrNotAcceptingMoves
	}
	if strategy == nil {
		strategy = s.strategy
	}
	return ai.Choose(strategy, s.active(side), s.active(side.Opponent()), s.rand)
}

// Resolve runs one full turn. It is only accepted in PhaseSelect.
func (s *Session) Resolve(ch Choices) (TurnResult, error) {
	switch s.phase {
	case PhaseEnded:
		return TurnResult{}, ErrBattleEnded
	case PhaseResolving:
		return TurnResult{}, ErrNotAcceptingMoves
	}

	player := s.active(SidePlayer)
	opponent := s.active(SideOpponent)
	playerMove, ok := player.Move(ch.Player)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: %q for %s", ErrMoveNotFound, ch.Player, player.Name)
	}
	opponentID := ch.Opponent
	if opponentID == "" {
		id, err := ai.Choose(s.strategy, opponent, player, s.rand)
		if err != nil {
			return TurnResult{}, fmt.Errorf("choose opponent move: %w", err)
		}
		opponentID = id
	}
	opponentMove, ok := opponent.Move(opponentID)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: %q for %s", ErrMoveNotFound, opponentID, opponent.Name)
	}

	s.phase = PhaseResolving
	turn := s.turn
	start := len(s.log)
	s.logf(msg.TurnStart, turn)

	moves := map[Side]creature.Move{SidePlayer: playerMove, SideOpponent: opponentMove}
	starters := map[Side]int{SidePlayer: s.ActiveIndex(SidePlayer), SideOpponent: s.ActiveIndex(SideOpponent)}
	first, second := s.order()

	if err := s.act(first, moves[first]); err != nil {
		s.phase = PhaseSelect
		return TurnResult{}, err
	}
	if s.phase != PhaseEnded && s.canStillAct(second, starters[second]) {
		if err := s.act(second, moves[second]); err != nil {
			s.phase = PhaseSelect
			return TurnResult{}, err
		}
	}
	if s.phase != PhaseEnded {
		s.endOfTurn(first, second)
	}
	if s.phase != PhaseEnded {
		s.turn++
		s.phase = PhaseSelect
	}

	return TurnResult{
		Turn:   turn,
		Lines:  append([]string(nil), s.log[start:]...),
		Phase:  s.phase,
		Winner: s.winner,
	}, nil
}

// EndInDraw stops a battle that is waiting for moves without a winner.
func (s *Session) EndInDraw() error {
	switch s.phase {
	case PhaseEnded:
		return ErrBattleEnded
	case PhaseResolving:
		return ErrNotAcceptingMoves
	}
	s.logf(msg.TurnLimit, s.turn-1)
	s.phase = PhaseEnded
	return nil
}

// EffectiveSpeed is speed after stages and paralysis.
func EffectiveSpeed(c *creature.Creature) float64 {
	return float64(c.Stats.Speed) * stage.MultiplierFor(c.Stages.Speed, false) * status.SpeedModifier(c)
}

// order returns the acting order. Equal speeds are settled with one draw.
func (s *Session) order() (Side, Side) {
	playerSpeed := EffectiveSpeed(s.active(SidePlayer))
	opponentSpeed := EffectiveSpeed(s.active(SideOpponent))
	switch {
	case playerSpeed > opponentSpeed:
		return SidePlayer, SideOpponent
	case opponentSpeed > playerSpeed:
		return SideOpponent, SidePlayer
	case s.rand.Next() < 0.5:
		return SidePlayer, SideOpponent
	default:
		return SideOpponent, SidePlayer
	}
}

// canStillAct reports whether side's creature that chose a move this turn
// is still on the field and standing.
func (s *Session) canStillAct(side Side, startIndex int) bool {
	return s.ActiveIndex(side) == startIndex && !s.active(side).Fainted()
}

func (s *Session) act(side Side, move creature.Move) error {
	attacker := s.active(side)
	defender := s.active(side.Opponent())

	gate := status.CheckCanAct(attacker, s.rand)
	s.logMessage(gate.Message)
	if !gate.CanAct {
		return nil
	}

	s.logf(msg.MoveUsed, attacker.Name, move.Name)
	if !s.hits(move, attacker, defender) {
		s.logf(msg.MoveMissed, attacker.Name)
		return nil
	}

	immune := false
	if move.Damaging() {
		immune = s.strike(move, attacker, defender)
	}

	if move.Effect != nil && !s.skipEffect(move.Effect, defender, immune) {
		res, err := effect.Resolve(move.Effect, attacker, defender, s.rand)
		if err != nil {
			return fmt.Errorf("resolve %s effect: %w", move.ID, err)
		}
		s.logMessage(res.Message)
	}

	if defender.Fainted() {
		s.faint(side.Opponent())
	}
	return nil
}

// skipEffect drops opponent-targeted effects when the target can no
// longer receive them.
func (s *Session) skipEffect(e creature.Effect, defender *creature.Creature, immune bool) bool {
	if e.EffectTarget() != creature.TargetOpponent {
		return false
	}
	return immune || defender.Fainted()
}

// hits rolls accuracy, scaled by the accuracy and evasion stages.
func (s *Session) hits(move creature.Move, attacker, defender *creature.Creature) bool {
	if move.Accuracy == 0 {
		return true
	}
	diff := stage.Clamp(attacker.Stages.Accuracy - defender.Stages.Evasion)
	threshold := float64(move.Accuracy) * stage.MultiplierFor(diff, true)
	return s.rand.Next()*100 < threshold
}

// strike applies damage and reports whether the defender was immune.
func (s *Session) strike(move creature.Move, attacker, defender *creature.Creature) bool {
	mult := s.chart.Multiplier(move.Type, defender.Types...)

	atk, def := attacker.Stats.Attack, defender.Stats.Defense
	atkStage, defStage := attacker.Stages.Attack, defender.Stages.Defense
	if move.Category == creature.CategorySpecial {
		atk, def = attacker.Stats.SpAttack, defender.Stats.SpDefense
		atkStage, defStage = attacker.Stages.SpAttack, defender.Stages.SpDefense
	}
	res := damage.Calculate(damage.Input{
		Level:          attacker.Level,
		Power:          move.Power,
		Attack:         atk,
		Defense:        def,
		AttackStage:    atkStage,
		DefenseStage:   defStage,
		StatusModifier: status.AttackModifier(attacker, move.Category),
		TypeMultiplier: mult,
	}, s.rand)

	switch typechart.Classify(mult) {
	case typechart.EffectivenessNone:
		s.logf(msg.NoEffect, defender.Name)
		return true
	case typechart.EffectivenessSuper:
		s.logf(msg.SuperEffect)
	case typechart.EffectivenessNotVery:
		s.logf(msg.NotVeryEffect)
	}
	dealt := defender.Damage(res.Damage)
	s.logf(msg.DamageDealt, defender.Name, dealt, defender.HP, defender.Stats.HP)
	return false
}

// faint handles side's active creature reaching 0 HP.
func (s *Session) faint(side Side) {
	s.settle([]Side{side})
}

// settle resolves creatures that fainted at the same point of a turn.
// Each fallen creature is logged first. If every listed side is out of
// creatures the battle is a draw, if one is out the other side wins,
// otherwise each side sends in its next creature.
func (s *Session) settle(sides []Side) {
	var out []Side
	for _, side := range sides {
		fallen := s.active(side)
		s.logf(msg.Fainted, fallen.Name)
		fallen.Stages.Reset()
		if s.nextAvailable(side) < 0 {
			out = append(out, side)
		}
	}
	switch len(out) {
	case 0:
		for _, side := range sides {
			t := s.team(side)
			t.active = s.nextAvailable(side)
			s.logf(msg.SwitchIn, t.name, t.creatures[t.active].Name)
		}
	case 1:
		s.winner = out[0].Opponent()
		s.phase = PhaseEnded
		s.logf(msg.Winner, s.Label(s.winner))
	default:
		s.winner = SideNone
		s.phase = PhaseEnded
		s.logf(msg.BothFainted)
	}
}

// nextAvailable returns the first non-fainted creature in roster order.
func (s *Session) nextAvailable(side Side) int {
	for i, c := range s.team(side).creatures {
		if !c.Fainted() {
			return i
		}
	}
	return -1
}

// endOfTurn ticks both active creatures in acting order, then settles
// whoever fainted from the ticks together.
func (s *Session) endOfTurn(order ...Side) {
	var fainted []Side
	for _, side := range order {
		c := s.active(side)
		if c.Fainted() {
			continue
		}
		tick := status.EndOfTurn(c)
		if tick.Message.Empty() {
			continue
		}
		c.Damage(tick.Damage)
		s.logMessage(tick.Message)
		if c.Fainted() {
			fainted = append(fainted, side)
		}
	}
	if len(fainted) > 0 {
		s.settle(fainted)
	}
}
