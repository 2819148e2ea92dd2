// Package storage defines persistence contracts for finished battles.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested battle record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a battle id is already stored.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidPageToken indicates a malformed or stale page token.
	ErrInvalidPageToken = errors.New("invalid page token")
	// ErrInvalidFilter indicates a filter expression that cannot be applied.
	ErrInvalidFilter = errors.New("invalid filter")
)

// BattleRecord stores one completed battle and its rendered log.
type BattleRecord struct {
	ID               string
	Seed             int64
	Locale           string
	PlayerRoster     string
	OpponentRoster   string
	PlayerStrategy   string
	OpponentStrategy string
	// Winner is "player", "opponent" or "none" for a draw.
	Winner    string
	Turns     int
	Log       []string
	CreatedAt time.Time
}

// ListOptions selects one page of battle records.
type ListOptions struct {
	PageSize  int
	PageToken string
	// Filter is an AIP-160 expression over the record fields.
	Filter string
	// OrderBy is "" or "created_at" (oldest first) or "created_at desc".
	OrderBy string
}

// BattlePage stores one page of battle records.
type BattlePage struct {
	Battles       []BattleRecord
	NextPageToken string
}

// BattleStore persists battle records.
type BattleStore interface {
	PutBattle(ctx context.Context, record BattleRecord) error
	GetBattle(ctx context.Context, id string) (BattleRecord, error)
	ListBattles(ctx context.Context, opts ListOptions) (BattlePage, error)
}
