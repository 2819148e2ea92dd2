package ai

import (
	"errors"
	"testing"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

const bestEffectivenessScript = `
function choose_move(attacker, defender, roll)
  local best, bestScore = nil, -1
  for _, m in ipairs(attacker.moves) do
    local score = m.power * m.effectiveness
    if score > bestScore then
      best, bestScore = m.id, score
    end
  end
  return best
end
`

func TestScriptChoosesMove(t *testing.T) {
	s, err := NewScript("best.lua", bestEffectivenessScript, chart(t))
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, tackle, waterGun)
	defender := mon("Defender", []typechart.Type{typechart.Fire})
	src := rng.NewSequence(0.3)
	got, err := Choose(s, attacker, defender, src)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if got != "water-gun" {
		t.Fatalf("move = %s, want water-gun", got)
	}
	if src.Draws() != 1 {
		t.Fatalf("draws = %d, want 1", src.Draws())
	}
}

func TestScriptReceivesRollAndState(t *testing.T) {
	script := `
function choose_move(attacker, defender, roll)
  if roll < 0.5 and defender.types[1] == "fire" and attacker.max_hp == 100 then
    return attacker.moves[2].id
  end
  return attacker.moves[1].id
end
`
	s, err := NewScript("roll.lua", script, chart(t))
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, tackle, waterGun)
	defender := mon("Defender", []typechart.Type{typechart.Fire})
	if got, _ := s.ChooseMove(attacker, defender, rng.NewSequence(0.2)); got != "water-gun" {
		t.Fatalf("low roll = %s, want water-gun", got)
	}
	if got, _ := s.ChooseMove(attacker, defender, rng.NewSequence(0.8)); got != "tackle" {
		t.Fatalf("high roll = %s, want tackle", got)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax", "function choose_move("},
		{"missing entrypoint", "local x = 1"},
		{"runtime", "error('boom')"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScript(tt.name, tt.source, nil); !errors.Is(err, ErrScript) {
				t.Fatalf("err = %v, want ErrScript", err)
			}
		})
	}

	s, err := NewScript("nil.lua", "function choose_move() return nil end", nil)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, tackle)
	if _, err := s.ChooseMove(attacker, attacker, rng.NewSequence()); !errors.Is(err, ErrScript) {
		t.Fatalf("err = %v, want ErrScript", err)
	}

	foreign, err := NewScript("foreign.lua", "function choose_move() return 'surf' end", nil)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	if _, err := Choose(foreign, attacker, attacker, rng.NewSequence()); !errors.Is(err, ErrForeignMove) {
		t.Fatalf("err = %v, want ErrForeignMove", err)
	}
}

func TestScriptRuntimeErrorsLeaveStackBalanced(t *testing.T) {
	s, err := NewScript("flaky.lua", "function choose_move(a, d, roll) error('no move for ' .. a.name) end", chart(t))
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, tackle)
	before := s.state.Top()
	for i := 0; i < 50; i++ {
		if _, err := s.ChooseMove(attacker, attacker, rng.NewSequence(0.5)); !errors.Is(err, ErrScript) {
			t.Fatalf("call %d err = %v, want ErrScript", i, err)
		}
	}
	if got := s.state.Top(); got != before {
		t.Fatalf("stack top = %d, want %d", got, before)
	}
}
