package ai

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

// ScriptEntrypoint is the global Lua function a script must define.
const ScriptEntrypoint = "choose_move"

// ErrScript indicates the Lua script failed to load or run.
var ErrScript = errors.New("strategy script failed")

// Script delegates move choice to a Lua function:
//
//	function choose_move(attacker, defender, roll) return "move-id" end
//
// attacker and defender are tables with name, hp, max_hp, level, types,
// condition and moves (each with id, name, type, power, accuracy, category
// and effectiveness against the defender). roll is the decision's single
// draw in [0,1). A Script serializes calls since a Lua state is not safe
// for concurrent use.
type Script struct {
	mu    sync.Mutex
	state *lua.State
	chart *typechart.Table
	name  string
}

// NewScript compiles source and checks that it defines choose_move.
func NewScript(name, source string, chart *typechart.Table) (*Script, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrScript, name, err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("%w: run %s: %v", ErrScript, name, err)
	}
	state.Global(ScriptEntrypoint)
	defined := state.TypeOf(-1) == lua.TypeFunction
	state.Pop(1)
	if !defined {
		return nil, fmt.Errorf("%w: %s does not define %s", ErrScript, name, ScriptEntrypoint)
	}
	return &Script{state: state, chart: chart, name: name}, nil
}

// ChooseMove implements Strategy.
func (s *Script) ChooseMove(attacker, defender *creature.Creature, src rng.Source) (string, error) {
	if len(attacker.Moves) == 0 {
		return "", ErrNoMoves
	}
	roll := src.Next()

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.state
	l.Global(ScriptEntrypoint)
	s.pushCreature(attacker, defender)
	s.pushCreature(defender, attacker)
	l.PushNumber(roll)
	if err := l.ProtectedCall(3, 1, 0); err != nil {
		// The error value is left on the stack.
		l.Pop(1)
		return "", fmt.Errorf("%w: %s: %v", ErrScript, s.name, err)
	}
	id, ok := l.ToString(-1)
	l.Pop(1)
	if !ok {
		return "", fmt.Errorf("%w: %s: %s must return a move id", ErrScript, s.name, ScriptEntrypoint)
	}
	return id, nil
}

func (s *Script) pushCreature(c, foe *creature.Creature) {
	l := s.state
	l.NewTable()
	setString(l, "id", c.ID)
	setString(l, "name", c.Name)
	setInt(l, "hp", c.HP)
	setInt(l, "max_hp", c.Stats.HP)
	setInt(l, "level", c.Level)
	setString(l, "condition", c.Condition().String())

	l.NewTable()
	for i, t := range c.Types {
		l.PushString(string(t))
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "types")

	l.NewTable()
	for i, m := range c.Moves {
		l.NewTable()
		setString(l, "id", m.ID)
		setString(l, "name", m.Name)
		setString(l, "type", string(m.Type))
		setInt(l, "power", m.Power)
		setInt(l, "accuracy", m.Accuracy)
		setString(l, "category", m.Category.String())
		l.PushNumber(s.chart.Multiplier(m.Type, foe.Types...))
		l.SetField(-2, "effectiveness")
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "moves")
}

func setString(l *lua.State, key, value string) {
	l.PushString(value)
	l.SetField(-2, key)
}

func setInt(l *lua.State, key string, value int) {
	l.PushInteger(value)
	l.SetField(-2, key)
}
