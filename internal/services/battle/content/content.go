// Package content loads type charts, moves and rosters from YAML.
//
// A content directory holds typechart.yaml, moves.yaml and one file per
// roster under rosters/. The package embeds a default directory so the
// binaries run without any files on disk.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/louisbranch/pocketduel/internal/services/battle/domain/creature"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/stage"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
	"gopkg.in/yaml.v3"
)

const (
	typeChartFile = "typechart.yaml"
	movesFile     = "moves.yaml"
	rostersDir    = "rosters"
	defaultLevel  = 50
)

// ErrInvalidContent wraps every decoding and validation failure.
var ErrInvalidContent = errors.New("invalid content")

// ErrUnknownRoster indicates a roster name with no file.
var ErrUnknownRoster = errors.New("unknown roster")

//go:embed data
var embeddedFS embed.FS

type chartYAML struct {
	Matchups map[string]map[string]float64 `yaml:"matchups"`
}

type movesYAML struct {
	Moves []moveYAML `yaml:"moves"`
}

type moveYAML struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Power    int         `yaml:"power"`
	Accuracy int         `yaml:"accuracy"`
	Category string      `yaml:"category"`
	Effect   *effectYAML `yaml:"effect"`
}

type effectYAML struct {
	Kind      string `yaml:"kind"`
	Stat      string `yaml:"stat"`
	Stages    int    `yaml:"stages"`
	Condition string `yaml:"condition"`
	Percent   int    `yaml:"percent"`
	Target    string `yaml:"target"`
	Chance    *int   `yaml:"chance"`
}

type rosterYAML struct {
	Name      string         `yaml:"name"`
	Creatures []creatureYAML `yaml:"creatures"`
}

type creatureYAML struct {
	ID    string    `yaml:"id"`
	Name  string    `yaml:"name"`
	Types []string  `yaml:"types"`
	Level int       `yaml:"level"`
	Stats statsYAML `yaml:"stats"`
	Moves []string  `yaml:"moves"`
}

type statsYAML struct {
	HP        int `yaml:"hp"`
	Attack    int `yaml:"attack"`
	Defense   int `yaml:"defense"`
	SpAttack  int `yaml:"sp_attack"`
	SpDefense int `yaml:"sp_defense"`
	Speed     int `yaml:"speed"`
}

// Roster is a named team definition.
type Roster struct {
	Name      string
	Creatures []creature.Creature
}

// MoveSet indexes move definitions by id.
type MoveSet map[string]creature.Move

// IDs returns the move ids, sorted.
func (m MoveSet) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParseTypeChart decodes a type chart document.
func ParseTypeChart(data []byte) (*typechart.Table, error) {
	var doc chartYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: type chart: %w", ErrInvalidContent, err)
	}
	table := &typechart.Table{}
	for rawAttacking, row := range doc.Matchups {
		attacking, err := typechart.ParseType(rawAttacking)
		if err != nil {
			return nil, fmt.Errorf("%w: type chart: %w", ErrInvalidContent, err)
		}
		for rawDefending, mult := range row {
			defending, err := typechart.ParseType(rawDefending)
			if err != nil {
				return nil, fmt.Errorf("%w: type chart: %w", ErrInvalidContent, err)
			}
			if err := table.Set(attacking, defending, mult); err != nil {
				return nil, fmt.Errorf("%w: type chart: %w", ErrInvalidContent, err)
			}
		}
	}
	return table, nil
}

// ParseMoves decodes a move list document.
func ParseMoves(data []byte) (MoveSet, error) {
	var doc movesYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: moves: %w", ErrInvalidContent, err)
	}
	set := make(MoveSet, len(doc.Moves))
	for i, raw := range doc.Moves {
		move, err := raw.toMove()
		if err != nil {
			return nil, fmt.Errorf("%w: moves[%d]: %w", ErrInvalidContent, i, err)
		}
		if _, dup := set[move.ID]; dup {
			return nil, fmt.Errorf("%w: moves[%d]: duplicate id %q", ErrInvalidContent, i, move.ID)
		}
		set[move.ID] = move
	}
	return set, nil
}

func (m moveYAML) toMove() (creature.Move, error) {
	typ, err := typechart.ParseType(m.Type)
	if err != nil {
		return creature.Move{}, err
	}
	category, err := creature.ParseCategory(m.Category)
	if err != nil {
		return creature.Move{}, err
	}
	move := creature.Move{
		ID:       strings.TrimSpace(m.ID),
		Name:     strings.TrimSpace(m.Name),
		Type:     typ,
		Power:    m.Power,
		Accuracy: m.Accuracy,
		Category: category,
	}
	if move.Name == "" {
		move.Name = move.ID
	}
	if m.Effect != nil {
		effect, err := m.Effect.toEffect()
		if err != nil {
			return creature.Move{}, fmt.Errorf("%s: %w", move.ID, err)
		}
		move.Effect = effect
	}
	return move, move.Validate()
}

func (e effectYAML) toEffect() (creature.Effect, error) {
	target, err := creature.ParseTarget(e.Target)
	if err != nil {
		return nil, err
	}
	chance := creature.DefaultChance
	if e.Chance != nil {
		chance = *e.Chance
	}
	switch strings.ToLower(strings.TrimSpace(e.Kind)) {
	case "stat", "stat_change":
		stat, err := stage.ParseStat(e.Stat)
		if err != nil {
			return nil, err
		}
		return creature.StatChange{Stat: stat, Stages: e.Stages, Target: target, Chance: chance}, nil
	case "status", "status_apply":
		cond, err := creature.ParseCondition(e.Condition)
		if err != nil {
			return nil, err
		}
		return creature.StatusApply{Condition: cond, Target: target, Chance: chance}, nil
	case "heal":
		return creature.Heal{Percent: e.Percent, Target: target, Chance: chance}, nil
	default:
		return nil, fmt.Errorf("unknown effect kind %q", e.Kind)
	}
}

// ParseRoster decodes a roster document, resolving move ids against moves.
func ParseRoster(data []byte, moves MoveSet) (Roster, error) {
	var doc rosterYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Roster{}, fmt.Errorf("%w: roster: %w", ErrInvalidContent, err)
	}
	roster := Roster{Name: strings.TrimSpace(doc.Name)}
	for i, raw := range doc.Creatures {
		c, err := raw.toCreature(moves)
		if err != nil {
			return Roster{}, fmt.Errorf("%w: roster %s: creatures[%d]: %w", ErrInvalidContent, roster.Name, i, err)
		}
		roster.Creatures = append(roster.Creatures, c)
	}
	return roster, nil
}

func (c creatureYAML) toCreature(moves MoveSet) (creature.Creature, error) {
	out := creature.Creature{
		ID:    strings.TrimSpace(c.ID),
		Name:  strings.TrimSpace(c.Name),
		Level: c.Level,
		Stats: creature.Stats{
			HP:        c.Stats.HP,
			Attack:    c.Stats.Attack,
			Defense:   c.Stats.Defense,
			SpAttack:  c.Stats.SpAttack,
			SpDefense: c.Stats.SpDefense,
			Speed:     c.Stats.Speed,
		},
	}
	if out.ID == "" {
		out.ID = strings.ToLower(strings.ReplaceAll(out.Name, " ", "-"))
	}
	if out.Level == 0 {
		out.Level = defaultLevel
	}
	out.HP = out.Stats.HP
	for _, raw := range c.Types {
		typ, err := typechart.ParseType(raw)
		if err != nil {
			return creature.Creature{}, err
		}
		out.Types = append(out.Types, typ)
	}
	for _, id := range c.Moves {
		move, ok := moves[strings.TrimSpace(id)]
		if !ok {
			return creature.Creature{}, fmt.Errorf("%s: unknown move %q", out.ID, id)
		}
		out.Moves = append(out.Moves, move)
	}
	return out, out.Validate()
}

// Provider reads content from a filesystem laid out as a content directory.
type Provider struct {
	fsys fs.FS
}

// NewProvider returns a provider rooted at fsys.
func NewProvider(fsys fs.FS) *Provider {
	return &Provider{fsys: fsys}
}

// Embedded returns the provider for the built-in content.
func Embedded() *Provider {
	sub, err := fs.Sub(embeddedFS, "data")
	if err != nil {
		panic(err)
	}
	return NewProvider(sub)
}

// TypeChart loads typechart.yaml.
func (p *Provider) TypeChart() (*typechart.Table, error) {
	data, err := fs.ReadFile(p.fsys, typeChartFile)
	if err != nil {
		return nil, fmt.Errorf("read type chart: %w", err)
	}
	return ParseTypeChart(data)
}

// Moves loads moves.yaml.
func (p *Provider) Moves() (MoveSet, error) {
	data, err := fs.ReadFile(p.fsys, movesFile)
	if err != nil {
		return nil, fmt.Errorf("read moves: %w", err)
	}
	return ParseMoves(data)
}

// Roster loads rosters/<name>.yaml with moves resolved from moves.yaml.
func (p *Provider) Roster(name string) (Roster, error) {
	moves, err := p.Moves()
	if err != nil {
		return Roster{}, err
	}
	return p.RosterWith(name, moves)
}

// RosterWith loads a roster against an already loaded move set.
func (p *Provider) RosterWith(name string, moves MoveSet) (Roster, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Roster{}, fmt.Errorf("%w: %q", ErrUnknownRoster, name)
	}
	data, err := fs.ReadFile(p.fsys, path.Join(rostersDir, name+".yaml"))
	if errors.Is(err, fs.ErrNotExist) {
		return Roster{}, fmt.Errorf("%w: %q", ErrUnknownRoster, name)
	}
	if err != nil {
		return Roster{}, fmt.Errorf("read roster %s: %w", name, err)
	}
	roster, err := ParseRoster(data, moves)
	if err != nil {
		return Roster{}, err
	}
	if roster.Name == "" {
		roster.Name = name
	}
	return roster, nil
}

// Rosters lists the roster names available, sorted.
func (p *Provider) Rosters() ([]string, error) {
	matches, err := fs.Glob(p.fsys, path.Join(rostersDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}
