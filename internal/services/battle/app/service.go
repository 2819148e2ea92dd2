// Package app drives battles to completion and records them.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/pocketduel/internal/platform/errors"
	"github.com/louisbranch/pocketduel/internal/platform/i18n/catalog"
	"github.com/louisbranch/pocketduel/internal/platform/id"
	platformotel "github.com/louisbranch/pocketduel/internal/platform/otel"
	"github.com/louisbranch/pocketduel/internal/services/battle/content"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/ai"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/battle"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/typechart"
	"github.com/louisbranch/pocketduel/internal/services/battle/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"
)

const (
	// DefaultTurnLimit ends a battle in a draw after this many turns.
	DefaultTurnLimit = 200
	// DefaultWorkers bounds concurrent battles in a batch.
	DefaultWorkers = 4
	// MaxBatch caps the battles in one batch.
	MaxBatch = 10000
)

// Config wires a Service.
type Config struct {
	// Chart resolves type effectiveness. Nil treats every matchup as neutral.
	Chart *typechart.Table
	// Store persists finished battles when set.
	Store storage.BattleStore
	// Catalog renders localized logs. Nil renders the base locale.
	Catalog *catalog.Bundle
	// TurnLimit defaults to DefaultTurnLimit.
	TurnLimit int
}

// Service runs battles.
type Service struct {
	chart     *typechart.Table
	store     storage.BattleStore
	catalog   *catalog.Bundle
	turnLimit int
	tracer    trace.Tracer
	clock     func() time.Time
	newID     func() (string, error)

	mu         sync.RWMutex
	strategies map[string]ai.Strategy
}

// NewService creates a battle service.
func NewService(cfg Config) *Service {
	limit := cfg.TurnLimit
	if limit <= 0 {
		limit = DefaultTurnLimit
	}
	return &Service{
		chart:      cfg.Chart,
		store:      cfg.Store,
		catalog:    cfg.Catalog,
		turnLimit:  limit,
		tracer:     platformotel.Tracer("battle"),
		clock:      time.Now,
		newID:      id.NewID,
		strategies: map[string]ai.Strategy{},
	}
}

// Chart returns the service's type chart.
func (s *Service) Chart() *typechart.Table {
	return s.chart
}

// RegisterStrategy makes a custom strategy (such as an ai.Script)
// available by name. Built-in names cannot be replaced.
func (s *Service) RegisterStrategy(name string, strategy ai.Strategy) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || strategy == nil {
		return fmt.Errorf("strategy name and implementation are required")
	}
	for _, builtin := range ai.Names {
		if key == builtin {
			return fmt.Errorf("strategy %q is built in", key)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies[key] = strategy
	return nil
}

// Strategy resolves a built-in or registered strategy by name.
func (s *Service) Strategy(name string) (ai.Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	s.mu.RLock()
	custom, ok := s.strategies[key]
	s.mu.RUnlock()
	if ok {
		return custom, nil
	}
	strategy, err := ai.New(key, s.chart)
	if err != nil {
		return nil, toAppError(err)
	}
	return strategy, nil
}

// Request describes one battle.
type Request struct {
	Seed     int64
	Locale   string
	Player   content.Roster
	Opponent content.Roster
	// PlayerStrategy drives the player side when Chooser is nil.
	PlayerStrategy   string
	OpponentStrategy string
	// Chooser overrides PlayerStrategy with explicit player moves.
	Chooser Chooser
	// Discard skips persistence even when a store is configured.
	Discard bool
}

// Result is a finished battle.
type Result struct {
	ID     string
	Seed   int64
	Locale string
	Winner battle.Side
	// Turns counts resolved turns.
	Turns int
	Log   []string
}

// Run plays one battle from start to finish.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "battle.run", trace.WithAttributes(
		attribute.Int64("battle.seed", req.Seed),
		attribute.String("battle.player_roster", req.Player.Name),
		attribute.String("battle.opponent_roster", req.Opponent.Name),
		attribute.String("battle.opponent_strategy", req.OpponentStrategy),
	))
	defer span.End()

	result, err := s.run(ctx, req, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, toAppError(err)
	}
	span.SetAttributes(
		attribute.String("battle.id", result.ID),
		attribute.String("battle.winner", result.Winner.String()),
		attribute.Int("battle.turns", result.Turns),
	)
	return result, nil
}

func (s *Service) run(ctx context.Context, req Request, span trace.Span) (Result, error) {
	opponentStrategy, err := s.Strategy(req.OpponentStrategy)
	if err != nil {
		return Result{}, err
	}
	chooser := req.Chooser
	if chooser == nil {
		playerStrategy, err := s.Strategy(req.PlayerStrategy)
		if err != nil {
			return Result{}, err
		}
		chooser = StrategyChooser{Strategy: playerStrategy}
	}

	locale := catalog.BaseLocale
	opts := battle.Options{
		Seed:         req.Seed,
		Chart:        s.chart,
		Strategy:     opponentStrategy,
		PlayerName:   req.Player.Name,
		OpponentName: req.Opponent.Name,
	}
	if s.catalog != nil {
		locale = s.catalog.ResolveLocale(req.Locale)
		opts.Printer = textPrinter{s.catalog.Printer(locale)}
	}

	session, err := battle.New(req.Player.Creatures, req.Opponent.Creatures, opts)
	if err != nil {
		return Result{}, err
	}
	for session.Phase() != battle.PhaseEnded {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if session.Turn() > s.turnLimit {
			if err := session.EndInDraw(); err != nil {
				return Result{}, err
			}
			break
		}
		move, err := chooser.ChooseMove(session)
		if err != nil {
			return Result{}, fmt.Errorf("choose player move: %w", err)
		}
		turn, err := session.Submit(move)
		if err != nil {
			return Result{}, err
		}
		span.AddEvent("battle.turn", trace.WithAttributes(
			attribute.Int("battle.turn", turn.Turn),
			attribute.Int("battle.lines", len(turn.Lines)),
		))
	}

	battleID, err := s.newID()
	if err != nil {
		return Result{}, err
	}
	result := Result{
		ID:     battleID,
		Seed:   req.Seed,
		Locale: locale,
		Winner: session.Winner(),
		Turns:  resolvedTurns(session),
		Log:    session.Log(),
	}
	if s.store != nil && !req.Discard {
		record := storage.BattleRecord{
			ID:               result.ID,
			Seed:             result.Seed,
			Locale:           locale,
			PlayerRoster:     req.Player.Name,
			OpponentRoster:   req.Opponent.Name,
			PlayerStrategy:   playerStrategyLabel(req),
			OpponentStrategy: strategyLabel(req.OpponentStrategy),
			Winner:           result.Winner.String(),
			Turns:            result.Turns,
			Log:              result.Log,
			CreatedAt:        s.clock().UTC(),
		}
		if err := s.store.PutBattle(ctx, record); err != nil {
			return Result{}, fmt.Errorf("save battle: %w", err)
		}
	}
	return result, nil
}

// resolvedTurns counts turns that ran. A battle won mid-turn stops the
// counter on that turn; otherwise the counter already points past it.
func resolvedTurns(s *battle.Session) int {
	if s.Winner() != battle.SideNone {
		return s.Turn()
	}
	return s.Turn() - 1
}

func strategyLabel(name string) string {
	if key := strings.ToLower(strings.TrimSpace(name)); key != "" {
		return key
	}
	return "strategic"
}

func playerStrategyLabel(req Request) string {
	if req.Chooser != nil {
		return "scripted"
	}
	return strategyLabel(req.PlayerStrategy)
}

// BatchResult aggregates a batch of battles.
type BatchResult struct {
	Battles      int
	PlayerWins   int
	OpponentWins int
	Draws        int
	TotalTurns   int
	// Results are ordered by seed offset.
	Results []Result
}

// RunBatch plays n independent battles with seeds req.Seed .. req.Seed+n-1
// on up to workers goroutines. Both sides must be strategy driven.
func (s *Service) RunBatch(ctx context.Context, req Request, n, workers int) (BatchResult, error) {
	if n <= 0 || n > MaxBatch {
		return BatchResult{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument,
			fmt.Sprintf("batch size %d out of range 1-%d", n, MaxBatch),
			map[string]string{"reason": fmt.Sprintf("batch size must be between 1 and %d", MaxBatch)})
	}
	if req.Chooser != nil {
		return BatchResult{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument,
			"batch battles cannot share a chooser",
			map[string]string{"reason": "batch battles must use a player strategy"})
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			one := req
			one.Seed = req.Seed + int64(i)
			res, err := s.Run(gctx, one)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	out := BatchResult{Battles: n, Results: results}
	for _, r := range results {
		out.TotalTurns += r.Turns
		switch r.Winner {
		case battle.SidePlayer:
			out.PlayerWins++
		case battle.SideOpponent:
			out.OpponentWins++
		default:
			out.Draws++
		}
	}
	return out, nil
}

// Get returns a stored battle.
func (s *Service) Get(ctx context.Context, battleID string) (storage.BattleRecord, error) {
	if s.store == nil {
		return storage.BattleRecord{}, apperrors.New(apperrors.CodeInternal, "battle store is not configured")
	}
	record, err := s.store.GetBattle(ctx, battleID)
	if err != nil {
		return storage.BattleRecord{}, toAppError(err)
	}
	return record, nil
}

// List returns one page of stored battles.
func (s *Service) List(ctx context.Context, opts storage.ListOptions) (storage.BattlePage, error) {
	if s.store == nil {
		return storage.BattlePage{}, apperrors.New(apperrors.CodeInternal, "battle store is not configured")
	}
	page, err := s.store.ListBattles(ctx, opts)
	if err != nil {
		return storage.BattlePage{}, toAppError(err)
	}
	return page, nil
}

// Matchup describes an attacking type against a defender's types.
type Matchup struct {
	Attacking     typechart.Type
	Defending     []typechart.Type
	Multiplier    float64
	Effectiveness typechart.Effectiveness
}

// TypeEffectiveness looks up a matchup in the service's chart.
func (s *Service) TypeEffectiveness(attacking string, defending ...string) (Matchup, error) {
	if len(defending) == 0 || len(defending) > 2 {
		return Matchup{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "one or two defending types required",
			map[string]string{"reason": "one or two defending types required"})
	}
	att, err := typechart.ParseType(attacking)
	if err != nil {
		return Matchup{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, err.Error(),
			map[string]string{"reason": err.Error()})
	}
	m := Matchup{Attacking: att}
	for _, raw := range defending {
		def, err := typechart.ParseType(raw)
		if err != nil {
			return Matchup{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, err.Error(),
				map[string]string{"reason": err.Error()})
		}
		m.Defending = append(m.Defending, def)
	}
	m.Multiplier = s.chart.Multiplier(att, m.Defending...)
	m.Effectiveness = typechart.Classify(m.Multiplier)
	return m, nil
}

// textPrinter adapts *message.Printer, whose Sprintf takes a
// message.Reference, to msg.Printer.
type textPrinter struct{ p *message.Printer }

func (t textPrinter) Sprintf(format string, args ...any) string {
	return t.p.Sprintf(format, args...)
}
