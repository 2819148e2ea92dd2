package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/pocketduel/internal/platform/errors"
	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	"github.com/louisbranch/pocketduel/internal/services/battle/content"
	"github.com/louisbranch/pocketduel/internal/services/battle/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type fakeBattleStore struct {
	mu      sync.Mutex
	records map[string]storage.BattleRecord
	order   []string
}

func newFakeBattleStore() *fakeBattleStore {
	return &fakeBattleStore{records: map[string]storage.BattleRecord{}}
}

func (f *fakeBattleStore) PutBattle(_ context.Context, record storage.BattleRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.ID]; ok {
		return storage.ErrAlreadyExists
	}
	f.records[record.ID] = record
	f.order = append(f.order, record.ID)
	return nil
}

func (f *fakeBattleStore) GetBattle(_ context.Context, id string) (storage.BattleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return storage.BattleRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeBattleStore) ListBattles(_ context.Context, opts storage.ListOptions) (storage.BattlePage, error) {
	if opts.Filter != "" {
		return storage.BattlePage{}, storage.ErrInvalidFilter
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	page := storage.BattlePage{}
	for _, id := range f.order {
		page.Battles = append(page.Battles, f.records[id])
	}
	return page, nil
}

func newTestService(t *testing.T, store storage.BattleStore) (*app.Service, *content.Provider) {
	t.Helper()
	provider := content.Embedded()
	chart, err := provider.TypeChart()
	if err != nil {
		t.Fatalf("type chart: %v", err)
	}
	return app.NewService(app.Config{Chart: chart, Store: store}), provider
}

func TestBattleSimulateHandler(t *testing.T) {
	t.Run("discards by default", func(t *testing.T) {
		store := newFakeBattleStore()
		service, provider := newTestService(t, store)
		handler := BattleSimulateHandler(service, provider)
		_, result, err := handler(context.Background(), nil, BattleSimulateInput{
			Seed:           9,
			PlayerRoster:   "red",
			OpponentRoster: "blue",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Saved || len(store.records) != 0 {
			t.Fatalf("expected unsaved battle, store has %d", len(store.records))
		}
		if result.Winner == "" || len(result.Log) == 0 {
			t.Fatalf("result = %+v, want winner and log", result)
		}
	})

	t.Run("save persists", func(t *testing.T) {
		store := newFakeBattleStore()
		service, provider := newTestService(t, store)
		handler := BattleSimulateHandler(service, provider)
		_, result, err := handler(context.Background(), nil, BattleSimulateInput{
			Seed:           9,
			PlayerRoster:   "red",
			OpponentRoster: "blue",
			Save:           true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.records[result.ID]; !ok {
			t.Fatalf("expected battle %q to be stored", result.ID)
		}
	})

	t.Run("same seed same log", func(t *testing.T) {
		service, provider := newTestService(t, nil)
		handler := BattleSimulateHandler(service, provider)
		input := BattleSimulateInput{Seed: 21, PlayerRoster: "blue", OpponentRoster: "red", OpponentStrategy: "random"}
		_, first, err := handler(context.Background(), nil, input)
		if err != nil {
			t.Fatalf("first run: %v", err)
		}
		_, second, err := handler(context.Background(), nil, input)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if strings.Join(first.Log, "\n") != strings.Join(second.Log, "\n") {
			t.Fatal("expected identical logs for the same seed")
		}
	})

	t.Run("scripted moves", func(t *testing.T) {
		service, provider := newTestService(t, nil)
		handler := BattleSimulateHandler(service, provider)
		_, _, err := handler(context.Background(), nil, BattleSimulateInput{
			PlayerRoster:   "red",
			OpponentRoster: "blue",
			Moves:          []string{"splash"},
		})
		if apperrors.CodeOf(err) != apperrors.CodeBattleMoveNotFound {
			t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeBattleMoveNotFound)
		}
	})

	t.Run("unknown roster", func(t *testing.T) {
		service, provider := newTestService(t, nil)
		handler := BattleSimulateHandler(service, provider)
		_, _, err := handler(context.Background(), nil, BattleSimulateInput{PlayerRoster: "red", OpponentRoster: "gold"})
		if apperrors.CodeOf(err) != apperrors.CodeNotFound {
			t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeNotFound)
		}
	})
}

func TestBattleBatchHandler(t *testing.T) {
	service, provider := newTestService(t, nil)
	handler := BattleBatchHandler(service, provider)
	_, result, err := handler(context.Background(), nil, BattleBatchInput{
		Seed:           1,
		Count:          6,
		Workers:        2,
		PlayerRoster:   "red",
		OpponentRoster: "blue",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Battles != 6 {
		t.Fatalf("battles = %d, want 6", result.Battles)
	}
	if got := result.PlayerWins + result.OpponentWins + result.Draws; got != 6 {
		t.Fatalf("outcomes = %d, want 6", got)
	}
	if result.AverageTurns <= 0 {
		t.Fatalf("average turns = %v, want > 0", result.AverageTurns)
	}

	_, _, err = handler(context.Background(), nil, BattleBatchInput{PlayerRoster: "red", OpponentRoster: "blue"})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidArgument)
	}
}

func TestBattleGetAndListHandlers(t *testing.T) {
	store := newFakeBattleStore()
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	_ = store.PutBattle(context.Background(), storage.BattleRecord{
		ID: "b1", Winner: "player", Turns: 3, Log: []string{"Turn 1", "Turn 2"}, CreatedAt: created,
	})
	service, _ := newTestService(t, store)

	_, got, err := BattleGetHandler(service)(context.Background(), nil, BattleGetInput{ID: "b1"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CreatedAt != "2026-03-04T05:06:07Z" || len(got.Log) != 2 {
		t.Fatalf("record = %+v", got)
	}

	_, _, err = BattleGetHandler(service)(context.Background(), nil, BattleGetInput{})
	if err == nil {
		t.Fatal("expected error for empty id")
	}
	_, _, err = BattleGetHandler(service)(context.Background(), nil, BattleGetInput{ID: "nope"})
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeNotFound)
	}

	_, page, err := BattleListHandler(service)(context.Background(), nil, BattleListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Battles) != 1 || page.Battles[0].Log != nil {
		t.Fatalf("page = %+v, want one entry without log", page)
	}
	_, _, err = BattleListHandler(service)(context.Background(), nil, BattleListInput{Filter: "winner ="})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidArgument)
	}
}

func TestTypeEffectivenessHandler(t *testing.T) {
	service, _ := newTestService(t, nil)
	handler := TypeEffectivenessHandler(service)
	tests := []struct {
		attacking     string
		defending     []string
		multiplier    float64
		effectiveness string
	}{
		{"electric", []string{"water", "flying"}, 4, "super_effective"},
		{"Electric", []string{"ground"}, 0, "no_effect"},
		{"fire", []string{"water"}, 0.5, "not_very_effective"},
		{"normal", []string{"fire"}, 1, "neutral"},
	}
	for _, tt := range tests {
		_, got, err := handler(context.Background(), nil, TypeEffectivenessInput{Attacking: tt.attacking, Defending: tt.defending})
		if err != nil {
			t.Fatalf("%s vs %v: %v", tt.attacking, tt.defending, err)
		}
		if got.Multiplier != tt.multiplier || got.Effectiveness != tt.effectiveness {
			t.Fatalf("%s vs %v = %v/%s, want %v/%s", tt.attacking, tt.defending, got.Multiplier, got.Effectiveness, tt.multiplier, tt.effectiveness)
		}
	}

	_, _, err := handler(context.Background(), nil, TypeEffectivenessInput{Attacking: "fire"})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidArgument)
	}
}

func TestRosterListHandler(t *testing.T) {
	_, result, err := RosterListHandler(content.Embedded())(context.Background(), nil, RosterListInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(result.Rosters, ",") != "blue,red" {
		t.Fatalf("rosters = %v, want [blue red]", result.Rosters)
	}
}

func TestBattleLogResourceHandler(t *testing.T) {
	store := newFakeBattleStore()
	_ = store.PutBattle(context.Background(), storage.BattleRecord{ID: "b7", Log: []string{"a", "b"}})
	service, _ := newTestService(t, store)
	handler := BattleLogResourceHandler(service)

	result, err := handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "battle://b7/log"}})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].Text != "a\nb" {
		t.Fatalf("contents = %+v", result.Contents)
	}

	_, err = handler(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "battle://missing/log"}})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestParseBattleIDFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
		ok   bool
	}{
		{"battle://abc/log", "abc", true},
		{" battle://abc/log ", "abc", true},
		{"battle:///log", "", false},
		{"battle://a/b/log", "", false},
		{"campaign://abc/log", "", false},
		{"battle://abc", "", false},
	}
	for _, tt := range tests {
		got, err := parseBattleIDFromURI(tt.uri)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("parse(%q) = %q, %v; want %q ok=%v", tt.uri, got, err, tt.want, tt.ok)
		}
	}
}
