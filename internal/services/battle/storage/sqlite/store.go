// Package sqlite provides a SQLite-backed battle record store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/pocketduel/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/pocketduel/internal/services/battle/filter"
	"github.com/louisbranch/pocketduel/internal/services/battle/storage"
	"github.com/louisbranch/pocketduel/internal/services/battle/storage/sqlite/migrations"
	"github.com/louisbranch/pocketduel/internal/storage/cursor"
	"github.com/louisbranch/pocketduel/internal/storage/pagination"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	// DefaultPageSize applies when ListOptions.PageSize is zero.
	DefaultPageSize = 20
	// MaxPageSize caps ListOptions.PageSize.
	MaxPageSize = 100

	selectColumns = `seq, id, seed, locale, player_roster, opponent_roster,
	        player_strategy, opponent_strategy, winner, turns, log_json, created_at`
)

var (
	listPageSize = pagination.PageSizeConfig{Default: DefaultPageSize, Max: MaxPageSize}
	listOrderBy  = pagination.OrderByConfig{
		Default: "created_at",
		Allowed: []string{"created_at", "created_at asc", "created_at desc"},
	}
)

// Store persists battle records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite battle store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutBattle inserts one battle record.
func (s *Store) PutBattle(ctx context.Context, record storage.BattleRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("battle id is required")
	}
	if strings.TrimSpace(record.Winner) == "" {
		return fmt.Errorf("winner is required")
	}
	logJSON, err := json.Marshal(record.Log)
	if err != nil {
		return fmt.Errorf("encode battle log: %w", err)
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO battles (
		   id, seed, locale, player_roster, opponent_roster,
		   player_strategy, opponent_strategy, winner, turns, log_json, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		record.Seed,
		record.Locale,
		record.PlayerRoster,
		record.OpponentRoster,
		record.PlayerStrategy,
		record.OpponentStrategy,
		record.Winner,
		record.Turns,
		string(logJSON),
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put battle: %w", err)
	}
	return nil
}

// GetBattle returns one battle by id.
func (s *Store) GetBattle(ctx context.Context, id string) (storage.BattleRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BattleRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BattleRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.BattleRecord{}, fmt.Errorf("battle id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM battles WHERE id = ?`, id)
	record, _, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.BattleRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.BattleRecord{}, fmt.Errorf("get battle: %w", err)
	}
	return record, nil
}

// ListBattles returns one page of battle records.
func (s *Store) ListBattles(ctx context.Context, opts storage.ListOptions) (storage.BattlePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.BattlePage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BattlePage{}, fmt.Errorf("storage is not configured")
	}
	if opts.PageSize < 0 {
		return storage.BattlePage{}, fmt.Errorf("page size must not be negative")
	}
	pageSize := pagination.ClampPageSize(opts.PageSize, listPageSize)
	orderBy, err := pagination.NormalizeOrderBy(opts.OrderBy, listOrderBy)
	if err != nil {
		return storage.BattlePage{}, fmt.Errorf("%w: %w", storage.ErrInvalidFilter, err)
	}
	descending := orderBy == "created_at desc"

	cond, err := filter.Parse(opts.Filter)
	if err != nil {
		return storage.BattlePage{}, fmt.Errorf("%w: %w", storage.ErrInvalidFilter, err)
	}
	var clauses []string
	var params []any
	if !cond.Empty() {
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}

	if token := strings.TrimSpace(opts.PageToken); token != "" {
		c, err := cursor.Decode(token)
		if err != nil {
			return storage.BattlePage{}, fmt.Errorf("%w: %w", storage.ErrInvalidPageToken, err)
		}
		if err := c.Validate(opts.Filter, orderBy); err != nil {
			return storage.BattlePage{}, fmt.Errorf("%w: %w", storage.ErrInvalidPageToken, err)
		}
		if c.Dir == cursor.DirectionBackward {
			clauses = append(clauses, "seq < ?")
		} else {
			clauses = append(clauses, "seq > ?")
		}
		params = append(params, int64(c.Seq))
	}

	query := `SELECT ` + selectColumns + ` FROM battles`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if descending {
		query += " ORDER BY seq DESC"
	} else {
		query += " ORDER BY seq ASC"
	}
	query += " LIMIT ?"
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.BattlePage{}, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	page := storage.BattlePage{Battles: make([]storage.BattleRecord, 0, pageSize)}
	var seqs []int64
	for rows.Next() {
		record, seq, err := scanRecord(rows)
		if err != nil {
			return storage.BattlePage{}, fmt.Errorf("list battles: %w", err)
		}
		page.Battles = append(page.Battles, record)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return storage.BattlePage{}, fmt.Errorf("list battles: %w", err)
	}
	if len(page.Battles) > pageSize {
		next := cursor.Next(uint64(seqs[pageSize-1]), descending, opts.Filter, orderBy)
		token, err := cursor.Encode(next)
		if err != nil {
			return storage.BattlePage{}, fmt.Errorf("encode page token: %w", err)
		}
		page.NextPageToken = token
		page.Battles = page.Battles[:pageSize]
	}
	return page, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (storage.BattleRecord, int64, error) {
	var (
		record    storage.BattleRecord
		seq       int64
		logJSON   string
		createdAt int64
	)
	if err := row.Scan(
		&seq,
		&record.ID,
		&record.Seed,
		&record.Locale,
		&record.PlayerRoster,
		&record.OpponentRoster,
		&record.PlayerStrategy,
		&record.OpponentStrategy,
		&record.Winner,
		&record.Turns,
		&logJSON,
		&createdAt,
	); err != nil {
		return storage.BattleRecord{}, 0, err
	}
	if err := json.Unmarshal([]byte(logJSON), &record.Log); err != nil {
		return storage.BattleRecord{}, 0, fmt.Errorf("decode battle log: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, seq, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "battles.id")
}

var _ storage.BattleStore = (*Store)(nil)
