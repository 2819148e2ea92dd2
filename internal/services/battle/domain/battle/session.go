// Package battle owns a battle session and the state machine that resolves
// its turns.
//
// # Determinism
//
// A Session owns the only random source used during the battle. Draws
// happen in this order each turn:
//
//  1. player move choice when a strategy plays the player side through
//     Choose (one draw), then opponent move choice when the session's
//     strategy picks it (one draw)
//  2. speed tie coin flip, only when effective speeds are equal
//  3. for each actor in order: paralysis or freeze check, accuracy roll
//     unless the move always hits, damage roll for damaging moves, effect
//     chance roll for moves with an effect, sleep duration when sleep lands
//
// End-of-turn ticks never draw. The same seed and the same move choices
// therefore reproduce the same log and final state.
//
// # Residual knockouts
//
// Both active creatures take their end-of-turn damage before anyone is
// checked for fainting. When both sides run out of creatures from the same
// round of ticks, the battle ends in a draw with no winner.
//
// A Session is not safe for concurrent use; each battle gets its own.
package battle

import (
	"errors"
	"fmt"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/ai"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/msg"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

// MaxTeamSize is the largest roster a side can bring.
const MaxTeamSize = 6

var (
	// ErrEmptyRoster indicates a side supplied no creatures.
	ErrEmptyRoster = errors.New("roster must contain at least one creature")
	// ErrRosterTooLarge indicates a side supplied more than MaxTeamSize creatures.
	ErrRosterTooLarge = errors.New("roster exceeds maximum team size")
	// ErrInvalidRoster wraps creature validation failures.
	ErrInvalidRoster = errors.New("invalid roster")
	// ErrLeadHasNoMoves indicates the lead creature cannot act.
	ErrLeadHasNoMoves = errors.New("lead creature must know at least one move")
	// ErrMoveNotFound indicates a move id absent from the active creature.
	ErrMoveNotFound = errors.New("move not found on active creature")
	// ErrNotAcceptingMoves indicates a submission while a turn is resolving.
	ErrNotAcceptingMoves = errors.New("battle is resolving a turn")
	// ErrBattleEnded indicates a submission after the battle finished.
	ErrBattleEnded = errors.New("battle has ended")
)

// Options configures a new session.
type Options struct {
	// Seed initializes the random source when Rand is nil.
	Seed int64
	// Rand overrides the random source.
	Rand rng.Source
	// Chart supplies type effectiveness. Nil treats every matchup as neutral.
	Chart *typechart.Table
	// Strategy picks the opponent's move. Defaults to ai.Strategic.
	Strategy ai.Strategy
	// Printer renders log lines. Nil uses the base locale.
	Printer msg.Printer
	// PlayerName and OpponentName label each side in the log.
	PlayerName   string
	OpponentName string
}

type team struct {
	name      string
	creatures []creature.Creature
	active    int
}

// Session is one battle from lead selection to a winner.
type Session struct {
	turn     int
	phase    Phase
	teams    [2]team
	winner   Side
	log      []string
	rand     rng.Source
	chart    *typechart.Table
	strategy ai.Strategy
	printer  msg.Printer
}

// New starts a session with deep copies of both rosters at full HP.
func New(player, opponent []creature.Creature, opts Options) (*Session, error) {
	if err := validateRoster(SidePlayer, player); err != nil {
		return nil, err
	}
	if err := validateRoster(SideOpponent, opponent); err != nil {
		return nil, err
	}
	src := opts.Rand
	if src == nil {
		src = rng.New(opts.Seed)
	}
	strategy := opts.Strategy
	if strategy == nil {
		strategy = ai.Strategic{Chart: opts.Chart}
	}
	s := &Session{
		turn:     1,
		phase:    PhaseSelect,
		rand:     src,
		chart:    opts.Chart,
		strategy: strategy,
		printer:  opts.Printer,
	}
	s.teams[SidePlayer.index()] = team{name: labelOr(opts.PlayerName, "Player"), creatures: freshCopies(player)}
	s.teams[SideOpponent.index()] = team{name: labelOr(opts.OpponentName, "Opponent"), creatures: freshCopies(opponent)}

	for _, side := range []Side{SidePlayer, SideOpponent} {
		s.logf(msg.BattleStart, s.team(side).name, s.active(side).Name)
	}
	return s, nil
}

func validateRoster(side Side, roster []creature.Creature) error {
	if len(roster) == 0 {
		return fmt.Errorf("%s: %w", side, ErrEmptyRoster)
	}
	if len(roster) > MaxTeamSize {
		return fmt.Errorf("%s: %w: %d creatures", side, ErrRosterTooLarge, len(roster))
	}
	for i, c := range roster {
		fresh := c.Fresh()
		if err := fresh.Validate(); err != nil {
			return fmt.Errorf("%s slot %d: %w: %w", side, i+1, ErrInvalidRoster, err)
		}
		if len(c.Moves) == 0 {
			if i == 0 {
				return fmt.Errorf("%s: %w: %s", side, ErrLeadHasNoMoves, c.Name)
			}
			return fmt.Errorf("%s slot %d: %w: %s has no moves", side, i+1, ErrInvalidRoster, c.Name)
		}
	}
	return nil
}

func freshCopies(roster []creature.Creature) []creature.Creature {
	out := make([]creature.Creature, len(roster))
	for i, c := range roster {
		out[i] = c.Fresh()
	}
	return out
}

func labelOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (s *Session) team(side Side) *team {
	return &s.teams[side.index()]
}

func (s *Session) active(side Side) *creature.Creature {
	t := s.team(side)
	return &t.creatures[t.active]
}

func (s *Session) logf(format string, args ...any) {
	s.log = append(s.log, msg.New(format, args...).Render(s.printer))
}

func (s *Session) logMessage(m msg.Message) {
	if m.Empty() {
		return
	}
	s.log = append(s.log, m.Render(s.printer))
}

// Turn returns the current turn number, starting at 1.
func (s *Session) Turn() int { return s.turn }

// Phase returns the state machine phase.
func (s *Session) Phase() Phase { return s.phase }

// Winner returns the winning side or SideNone.
func (s *Session) Winner() Side { return s.winner }

// Log returns a copy of the battle log.
func (s *Session) Log() []string {
	return append([]string(nil), s.log...)
}

// ActiveIndex returns the roster index of side's active creature.
func (s *Session) ActiveIndex(side Side) int {
	return s.team(side).active
}

// Active returns a copy of side's active creature.
func (s *Session) Active(side Side) creature.Creature {
	return s.active(side).Clone()
}

// Team returns copies of side's roster in order.
func (s *Session) Team(side Side) []creature.Creature {
	t := s.team(side)
	out := make([]creature.Creature, len(t.creatures))
	for i, c := range t.creatures {
		out[i] = c.Clone()
	}
	return out
}

// Label returns the display name of side.
func (s *Session) Label(side Side) string {
	if side == SideNone {
		return ""
	}
	return s.team(side).name
}

// Snapshot is a point-in-time copy of the whole session.
type Snapshot struct {
	Turn           int
	Phase          Phase
	Winner         Side
	PlayerActive   int
	OpponentActive int
	Player         []creature.Creature
	Opponent       []creature.Creature
	Log            []string
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Turn:           s.turn,
		Phase:          s.phase,
		Winner:         s.winner,
		PlayerActive:   s.ActiveIndex(SidePlayer),
		OpponentActive: s.ActiveIndex(SideOpponent),
		Player:         s.Team(SidePlayer),
		Opponent:       s.Team(SideOpponent),
		Log:            s.Log(),
	}
}
