package content

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
)

func TestEmbeddedTypeChartCoversAllTypes(t *testing.T) {
	chart, err := Embedded().TypeChart()
	if err != nil {
		t.Fatalf("type chart: %v", err)
	}
	if got := len(chart.Types()); got != 18 {
		t.Fatalf("types = %d, want 18", got)
	}

	tests := []struct {
		attacking typechart.Type
		defending []typechart.Type
		want      float64
	}{
		{typechart.Electric, []typechart.Type{typechart.Water}, 2},
		{typechart.Electric, []typechart.Type{typechart.Ground}, 0},
		{typechart.Fire, []typechart.Type{typechart.Grass, typechart.Steel}, 4},
		{typechart.Water, []typechart.Type{typechart.Water, typechart.Dragon}, 0.25},
		{typechart.Normal, []typechart.Type{typechart.Ghost}, 0},
		{typechart.Fairy, []typechart.Type{typechart.Dragon}, 2},
		{typechart.Psychic, []typechart.Type{typechart.Normal}, 1},
	}
	for _, tt := range tests {
		if got := chart.Multiplier(tt.attacking, tt.defending...); got != tt.want {
			t.Fatalf("%s -> %v = %v, want %v", tt.attacking, tt.defending, got, tt.want)
		}
	}
}

func TestEmbeddedRostersLoad(t *testing.T) {
	p := Embedded()
	names, err := p.Rosters()
	if err != nil {
		t.Fatalf("rosters: %v", err)
	}
	if len(names) < 2 {
		t.Fatalf("rosters = %v, want at least two", names)
	}
	for _, name := range names {
		roster, err := p.Roster(name)
		if err != nil {
			t.Fatalf("roster %s: %v", name, err)
		}
		if len(roster.Creatures) == 0 {
			t.Fatalf("roster %s is empty", name)
		}
		for _, c := range roster.Creatures {
			if c.HP != c.Stats.HP {
				t.Fatalf("%s hp = %d, want full %d", c.ID, c.HP, c.Stats.HP)
			}
		}
	}
}

func TestParseMovesEffects(t *testing.T) {
	moves, err := ParseMoves([]byte(`
moves:
  - id: growl
    type: normal
    accuracy: 100
    category: status
    effect: {kind: stat, stat: attack, stages: -1}
  - id: recover
    type: normal
    category: status
    effect: {kind: heal, percent: 50, target: self}
  - id: ember
    type: fire
    power: 40
    accuracy: 100
    category: special
    effect: {kind: status, condition: burn, chance: 10}
`))
	if err != nil {
		t.Fatalf("parse moves: %v", err)
	}
	if got := moves.IDs(); len(got) != 3 || got[0] != "ember" {
		t.Fatalf("ids = %v", got)
	}

	growl := moves["growl"]
	if growl.Name != "growl" {
		t.Fatalf("name = %q, want id fallback", growl.Name)
	}
	sc, ok := growl.Effect.(creature.StatChange)
	if !ok || sc.Stat != stage.Attack || sc.Stages != -1 || sc.Target != creature.TargetOpponent {
		t.Fatalf("growl effect = %#v", growl.Effect)
	}
	if heal, ok := moves["recover"].Effect.(creature.Heal); !ok || heal.Percent != 50 || heal.Target != creature.TargetSelf {
		t.Fatalf("recover effect = %#v", moves["recover"].Effect)
	}
	if st, ok := moves["ember"].Effect.(creature.StatusApply); !ok || st.Condition != creature.Burn || st.Probability() != 10 {
		t.Fatalf("ember effect = %#v", moves["ember"].Effect)
	}
}

func TestParseMovesChance(t *testing.T) {
	tests := []struct {
		name   string
		effect string
		want   int
	}{
		{"omitted stat", "{kind: stat, stat: attack, stages: -1}", 100},
		{"zero stat", "{kind: stat, stat: attack, stages: -1, chance: 0}", 0},
		{"zero status", "{kind: status, condition: burn, chance: 0}", 0},
		{"omitted heal", "{kind: heal, percent: 50, target: self}", 100},
		{"zero heal", "{kind: heal, percent: 50, target: self, chance: 0}", 0},
		{"partial status", "{kind: status, condition: burn, chance: 30}", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves, err := ParseMoves([]byte("moves:\n  - {id: a, type: normal, category: status, effect: " + tt.effect + "}"))
			if err != nil {
				t.Fatalf("parse moves: %v", err)
			}
			if got := moves["a"].Effect.Probability(); got != tt.want {
				t.Fatalf("chance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseMovesRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad category", "moves:\n  - {id: a, type: normal, category: magic}"},
		{"duplicate", "moves:\n  - {id: a, type: normal, category: physical, power: 10}\n  - {id: a, type: normal, category: physical, power: 10}"},
		{"bad effect kind", "moves:\n  - {id: a, type: normal, category: status, effect: {kind: confuse}}"},
		{"bad accuracy", "moves:\n  - {id: a, type: normal, category: physical, power: 10, accuracy: 150}"},
		{"not yaml", "moves: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMoves([]byte(tt.doc)); !errors.Is(err, ErrInvalidContent) {
				t.Fatalf("err = %v, want ErrInvalidContent", err)
			}
		})
	}
}

func TestParseTypeChartRejectsInvalidMultiplier(t *testing.T) {
	_, err := ParseTypeChart([]byte("matchups:\n  fire: {grass: 3}\n"))
	if !errors.Is(err, ErrInvalidContent) || !errors.Is(err, typechart.ErrInvalidMultiplier) {
		t.Fatalf("err = %v, want invalid multiplier", err)
	}
}

func TestProviderFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"moves.yaml": &fstest.MapFile{Data: []byte("moves:\n  - {id: tackle, name: Tackle, type: normal, power: 40, accuracy: 100, category: physical}\n")},
		"rosters/solo.yaml": &fstest.MapFile{Data: []byte(`
creatures:
  - name: Mossy Rock
    types: [rock]
    stats: {hp: 50, attack: 10, defense: 10, sp_attack: 10, sp_defense: 10, speed: 10}
    moves: [tackle]
`)},
		"rosters/broken.yaml": &fstest.MapFile{Data: []byte(`
creatures:
  - name: Ghost
    types: [ghost]
    stats: {hp: 50, attack: 10, defense: 10, sp_attack: 10, sp_defense: 10, speed: 10}
    moves: [hex]
`)},
	}
	p := NewProvider(fsys)

	roster, err := p.Roster("solo")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if roster.Name != "solo" {
		t.Fatalf("name = %q, want file name fallback", roster.Name)
	}
	c := roster.Creatures[0]
	if c.ID != "mossy-rock" || c.Level != defaultLevel {
		t.Fatalf("creature = %s level %d, want mossy-rock level %d", c.ID, c.Level, defaultLevel)
	}

	if _, err := p.Roster("broken"); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("broken err = %v, want ErrInvalidContent", err)
	}
	if _, err := p.Roster("missing"); !errors.Is(err, ErrUnknownRoster) {
		t.Fatalf("missing err = %v, want ErrUnknownRoster", err)
	}
	if _, err := p.Roster("../moves"); !errors.Is(err, ErrUnknownRoster) {
		t.Fatalf("traversal err = %v, want ErrUnknownRoster", err)
	}
	if _, err := p.TypeChart(); err == nil {
		t.Fatal("expected missing type chart error")
	}
}
