package app

import (
	"errors"
	"fmt"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/ai"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/battle"
)

// ErrChoicesExhausted indicates a scripted chooser ran out of moves.
var ErrChoicesExhausted = errors.New("scripted choices exhausted")

// Chooser supplies the player's move for the session's current turn.
type Chooser interface {
	ChooseMove(s *battle.Session) (string, error)
}

// Scripted replays a fixed list of player moves in order.
type Scripted struct {
	moves []string
	pos   int
}

// NewScripted returns a chooser that plays moves in order.
func NewScripted(moves ...string) *Scripted {
	return &Scripted{moves: append([]string(nil), moves...)}
}

// ChooseMove implements Chooser.
func (c *Scripted) ChooseMove(s *battle.Session) (string, error) {
	if c.pos >= len(c.moves) {
		return "", fmt.Errorf("%w after %d moves", ErrChoicesExhausted, len(c.moves))
	}
	move := c.moves[c.pos]
	c.pos++
	return move, nil
}

// StrategyChooser lets an AI strategy play the player side. Its draw comes
// from the session's own stream, ahead of the turn's other draws.
type StrategyChooser struct {
	Strategy ai.Strategy
}

// ChooseMove implements Chooser.
func (c StrategyChooser) ChooseMove(s *battle.Session) (string, error) {
	return s.Choose(battle.SidePlayer, c.Strategy)
}
