package creature

import (
	"errors"
	"testing"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

func sampleCreature() Creature {
	return Creature{
		ID:    "sparkit",
		Name:  "Sparkit",
		Types: []typechart.Type{typechart.Electric},
		Level: 50,
		Stats: Stats{HP: 120, Attack: 80, Defense: 70, SpAttack: 100, SpDefense: 80, Speed: 110},
		HP:    120,
		Moves: []Move{
			{ID: "spark", Name: "Spark", Type: typechart.Electric, Power: 65, Accuracy: 100, Category: CategoryPhysical,
				Effect: StatusApply{Condition: Paralysis, Chance: 30}},
			{ID: "growl", Name: "Growl", Type: typechart.Normal, Category: CategoryStatus,
				Effect: StatChange{Stat: stage.Attack, Stages: -1, Chance: 100}},
		},
	}
}

func TestValidate(t *testing.T) {
	if err := sampleCreature().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Creature)
		want   error
	}{
		{"missing id", func(c *Creature) { c.ID = "" }, ErrInvalidCreature},
		{"no types", func(c *Creature) { c.Types = nil }, ErrInvalidCreature},
		{"three types", func(c *Creature) {
			c.Types = []typechart.Type{typechart.Fire, typechart.Water, typechart.Grass}
		}, ErrInvalidCreature},
		{"level zero", func(c *Creature) { c.Level = 0 }, ErrInvalidCreature},
		{"zero speed", func(c *Creature) { c.Stats.Speed = 0 }, ErrInvalidCreature},
		{"hp above max", func(c *Creature) { c.HP = 500 }, ErrInvalidCreature},
		{"five moves", func(c *Creature) {
			m := c.Moves[0]
			c.Moves = []Move{m, m, m, m, m}
		}, ErrInvalidCreature},
		{"duplicate move", func(c *Creature) { c.Moves[1].ID = "spark" }, ErrInvalidCreature},
		{"bad category", func(c *Creature) { c.Moves[0].Category = 0 }, ErrUnknownCategory},
		{"accuracy over 100", func(c *Creature) { c.Moves[0].Accuracy = 101 }, ErrInvalidMove},
		{"unknown effect stat", func(c *Creature) {
			c.Moves[1].Effect = StatChange{Stat: stage.StatUnspecified, Stages: 1, Chance: 100}
		}, stage.ErrUnknownStat},
		{"unknown effect condition", func(c *Creature) {
			c.Moves[0].Effect = StatusApply{Condition: Condition(42), Chance: 100}
		}, ErrUnknownCondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCreature()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := sampleCreature()
	src.Status = &StatusState{Condition: Sleep, TurnsRemaining: 2}
	clone := src.Clone()

	clone.Moves[0].Power = 1
	clone.Types[0] = typechart.Water
	clone.Status.TurnsRemaining = 0

	if src.Moves[0].Power != 65 {
		t.Fatalf("source move power = %d, want 65", src.Moves[0].Power)
	}
	if src.Types[0] != typechart.Electric {
		t.Fatalf("source type = %s, want electric", src.Types[0])
	}
	if src.Status.TurnsRemaining != 2 {
		t.Fatalf("source sleep turns = %d, want 2", src.Status.TurnsRemaining)
	}
}

func TestFresh(t *testing.T) {
	src := sampleCreature()
	src.HP = 3
	src.Stages.Attack = 4
	src.Status = &StatusState{Condition: Burn}
	fresh := src.Fresh()
	if fresh.HP != fresh.Stats.HP || fresh.Stages != (stage.Stages{}) || fresh.Status != nil {
		t.Fatalf("fresh = hp %d stages %+v status %v", fresh.HP, fresh.Stages, fresh.Status)
	}
	if src.HP != 3 {
		t.Fatalf("source hp = %d, want 3", src.HP)
	}
}

func TestDamageAndRestoreClamp(t *testing.T) {
	c := sampleCreature()
	if got := c.Damage(500); got != 120 || c.HP != 0 || !c.Fainted() {
		t.Fatalf("Damage = %d, hp %d", got, c.HP)
	}
	if got := c.Restore(30); got != 30 || c.HP != 30 {
		t.Fatalf("Restore = %d, hp %d", got, c.HP)
	}
	if got := c.Restore(500); got != 90 || c.HP != 120 {
		t.Fatalf("Restore = %d, hp %d", got, c.HP)
	}
	if got := c.Damage(-5); got != 0 {
		t.Fatalf("negative damage = %d, want 0", got)
	}
}

func TestMoveLookup(t *testing.T) {
	c := sampleCreature()
	if _, ok := c.Move("spark"); !ok {
		t.Fatal("expected spark")
	}
	if _, ok := c.Move("surf"); ok {
		t.Fatal("did not expect surf")
	}
	if got := c.MoveIDs(); len(got) != 2 || got[1] != "growl" {
		t.Fatalf("MoveIDs = %v", got)
	}
}

func TestMoveDamaging(t *testing.T) {
	tests := []struct {
		move Move
		want bool
	}{
		{Move{Category: CategoryPhysical, Power: 40}, true},
		{Move{Category: CategorySpecial, Power: 90}, true},
		{Move{Category: CategoryStatus, Power: 40}, false},
		{Move{Category: CategorySpecial, Power: 0}, false},
	}
	for _, tt := range tests {
		if got := tt.move.Damaging(); got != tt.want {
			t.Fatalf("Damaging(%+v) = %v, want %v", tt.move, got, tt.want)
		}
	}
}

func TestParsers(t *testing.T) {
	if c, err := ParseCondition("badly_poisoned"); err != nil || c != BadlyPoisoned {
		t.Fatalf("ParseCondition = %v, %v", c, err)
	}
	if _, err := ParseCondition("confusion"); !errors.Is(err, ErrUnknownCondition) {
		t.Fatalf("err = %v, want ErrUnknownCondition", err)
	}
	if c, err := ParseCategory("Special"); err != nil || c != CategorySpecial {
		t.Fatalf("ParseCategory = %v, %v", c, err)
	}
	if _, err := ParseCategory("other"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
	if tgt, err := ParseTarget("self"); err != nil || tgt != TargetSelf {
		t.Fatalf("ParseTarget = %v, %v", tgt, err)
	}
	if got := (StatChange{}).Probability(); got != 0 {
		t.Fatalf("zero chance = %d, want 0", got)
	}
	if got := (Heal{Percent: 10, Chance: 40}).Probability(); got != 40 {
		t.Fatalf("chance = %d, want 40", got)
	}
}
