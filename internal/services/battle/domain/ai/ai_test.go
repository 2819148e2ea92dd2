package ai

import (
	"errors"
	"testing"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/rng"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

func chart(t *testing.T) *typechart.Table {
	t.Helper()
	table, err := typechart.NewTable(map[typechart.Type]map[typechart.Type]float64{
		typechart.Water:    {typechart.Fire: 2, typechart.Grass: 0.5},
		typechart.Electric: {typechart.Ground: 0, typechart.Water: 2},
		typechart.Grass:    {typechart.Fire: 0.5, typechart.Water: 2},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func mon(name string, types []typechart.Type, moves ...creature.Move) *creature.Creature {
	return &creature.Creature{
		ID: name, Name: name, Types: types, Level: 50,
		Stats: creature.Stats{HP: 100, Attack: 50, Defense: 50, SpAttack: 50, SpDefense: 50, Speed: 50},
		HP:    100, Moves: moves,
	}
}

var (
	waterGun    = creature.Move{ID: "water-gun", Type: typechart.Water, Power: 40, Accuracy: 100, Category: creature.CategorySpecial}
	thunderbolt = creature.Move{ID: "thunderbolt", Type: typechart.Electric, Power: 90, Accuracy: 100, Category: creature.CategorySpecial}
	vineWhip    = creature.Move{ID: "vine-whip", Type: typechart.Grass, Power: 45, Accuracy: 100, Category: creature.CategoryPhysical}
	tackle      = creature.Move{ID: "tackle", Type: typechart.Normal, Power: 40, Accuracy: 100, Category: creature.CategoryPhysical}
	scratch     = creature.Move{ID: "scratch", Type: typechart.Normal, Power: 40, Accuracy: 100, Category: creature.CategoryPhysical}
	thunderWave = creature.Move{ID: "thunder-wave", Type: typechart.Electric, Accuracy: 90, Category: creature.CategoryStatus,
		Effect: creature.StatusApply{Condition: creature.Paralysis, Chance: 100}}
	swordsDance = creature.Move{ID: "swords-dance", Type: typechart.Normal, Category: creature.CategoryStatus,
		Effect: creature.StatChange{Stat: stage.Attack, Stages: 2, Target: creature.TargetSelf, Chance: 100}}
)

func TestStrategicPrefersSuperEffective(t *testing.T) {
	s := Strategic{Chart: chart(t)}
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, tackle, waterGun, vineWhip)
	defender := mon("Defender", []typechart.Type{typechart.Fire})
	src := rng.NewSequence(0.99)
	got, err := s.ChooseMove(attacker, defender, src)
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if got != "water-gun" {
		t.Fatalf("move = %s, want water-gun", got)
	}
	if src.Draws() != 1 {
		t.Fatalf("draws = %d, want 1", src.Draws())
	}
}

func TestStrategicAvoidsImmuneMatchup(t *testing.T) {
	s := Strategic{Chart: chart(t)}
	attacker := mon("Attacker", []typechart.Type{typechart.Electric}, thunderbolt, tackle)
	defender := mon("Defender", []typechart.Type{typechart.Ground})
	got, err := s.ChooseMove(attacker, defender, rng.NewSequence(0))
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if got != "tackle" {
		t.Fatalf("move = %s, want tackle", got)
	}
}

func TestStrategicFavorsDamageOverStatus(t *testing.T) {
	s := Strategic{Chart: chart(t)}
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, thunderWave, tackle)
	defender := mon("Defender", []typechart.Type{typechart.Normal})
	got, _ := s.ChooseMove(attacker, defender, rng.NewSequence(0))
	if got != "tackle" {
		t.Fatalf("move = %s, want tackle", got)
	}
}

func TestStrategicFavorsResistedDamageOverStatus(t *testing.T) {
	table, err := typechart.NewTable(map[typechart.Type]map[typechart.Type]float64{
		typechart.Normal: {typechart.Rock: 0.5, typechart.Steel: 0.5},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	s := Strategic{Chart: table}
	growl := creature.Move{ID: "growl", Type: typechart.Normal, Accuracy: 100, Category: creature.CategoryStatus,
		Effect: creature.StatChange{Stat: stage.Attack, Stages: -1, Chance: 100}}
	attacker := mon("Attacker", []typechart.Type{typechart.Fire}, growl, tackle)
	defender := mon("Defender", []typechart.Type{typechart.Rock, typechart.Steel})

	if damaging, status := s.Score(tackle, attacker, defender), s.Score(growl, attacker, defender); damaging <= status {
		t.Fatalf("tackle score %v <= growl score %v", damaging, status)
	}
	got, err := s.ChooseMove(attacker, defender, rng.NewSequence(0))
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if got != "tackle" {
		t.Fatalf("move = %s, want tackle", got)
	}
}

func TestStrategicImmuneDamageScoresZero(t *testing.T) {
	s := Strategic{Chart: chart(t)}
	attacker := mon("Attacker", []typechart.Type{typechart.Electric}, thunderbolt, thunderWave)
	defender := mon("Defender", []typechart.Type{typechart.Ground})
	if got := s.Score(thunderbolt, attacker, defender); got != 0 {
		t.Fatalf("immune score = %v, want 0", got)
	}
	if got, _ := s.ChooseMove(attacker, defender, rng.NewSequence(0)); got != "thunder-wave" {
		t.Fatalf("move = %s, want thunder-wave", got)
	}
}

func TestStrategicSkipsUselessStatusMoves(t *testing.T) {
	s := Strategic{Chart: chart(t)}
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, thunderWave, swordsDance)
	attacker.Stages.Attack = stage.Max
	defender := mon("Defender", []typechart.Type{typechart.Electric})
	if got := s.Score(thunderWave, attacker, defender); got != 0 {
		t.Fatalf("paralysis on electric score = %v, want 0", got)
	}
	if got := s.Score(swordsDance, attacker, defender); got != 0 {
		t.Fatalf("capped boost score = %v, want 0", got)
	}
}

func TestStrategicTieBreakUsesDraw(t *testing.T) {
	s := Strategic{Chart: chart(t)}
	attacker := mon("Attacker", []typechart.Type{typechart.Fire}, tackle, scratch)
	defender := mon("Defender", []typechart.Type{typechart.Normal})
	if got, _ := s.ChooseMove(attacker, defender, rng.NewSequence(0.1)); got != "tackle" {
		t.Fatalf("low draw = %s, want tackle", got)
	}
	if got, _ := s.ChooseMove(attacker, defender, rng.NewSequence(0.9)); got != "scratch" {
		t.Fatalf("high draw = %s, want scratch", got)
	}
}

func TestRandomAlwaysPicksOwnMove(t *testing.T) {
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, tackle, waterGun, vineWhip, thunderbolt)
	defender := mon("Defender", []typechart.Type{typechart.Normal})
	src := rng.New(7)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := Choose(Random{}, attacker, defender, src)
		if err != nil {
			t.Fatalf("Choose: %v", err)
		}
		seen[id] = true
	}
	if len(seen) != 4 {
		t.Fatalf("saw %d distinct moves, want 4", len(seen))
	}
}

func TestNoMoves(t *testing.T) {
	attacker := mon("Attacker", []typechart.Type{typechart.Normal})
	defender := mon("Defender", []typechart.Type{typechart.Normal})
	if _, err := (Random{}).ChooseMove(attacker, defender, rng.NewSequence()); !errors.Is(err, ErrNoMoves) {
		t.Fatalf("random err = %v", err)
	}
	if _, err := (Strategic{}).ChooseMove(attacker, defender, rng.NewSequence()); !errors.Is(err, ErrNoMoves) {
		t.Fatalf("strategic err = %v", err)
	}
}

type fixedStrategy string

func (f fixedStrategy) ChooseMove(*creature.Creature, *creature.Creature, rng.Source) (string, error) {
	return string(f), nil
}

func TestChooseRejectsForeignMove(t *testing.T) {
	attacker := mon("Attacker", []typechart.Type{typechart.Normal}, tackle)
	defender := mon("Defender", []typechart.Type{typechart.Normal})
	if _, err := Choose(fixedStrategy("hyper-beam"), attacker, defender, rng.NewSequence()); !errors.Is(err, ErrForeignMove) {
		t.Fatalf("err = %v, want ErrForeignMove", err)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		if _, err := New(name, nil); err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
	}
	if _, err := New("minimax", nil); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
}
