// Package domain maps MCP tools and resources onto the battle service.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	"github.com/louisbranch/pocketduel/internal/services/battle/content"
	"github.com/louisbranch/pocketduel/internal/services/battle/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BattleSimulateInput represents the MCP tool input for one battle.
type BattleSimulateInput struct {
	Seed             int64    `json:"seed" jsonschema:"seed for the deterministic random stream"`
	PlayerRoster     string   `json:"player_roster" jsonschema:"roster name for the player side"`
	OpponentRoster   string   `json:"opponent_roster" jsonschema:"roster name for the opponent side"`
	PlayerStrategy   string   `json:"player_strategy,omitempty" jsonschema:"player strategy (strategic, random, or a registered script)"`
	OpponentStrategy string   `json:"opponent_strategy,omitempty" jsonschema:"opponent strategy (strategic, random, or a registered script)"`
	Moves            []string `json:"moves,omitempty" jsonschema:"explicit player move ids, one per turn; overrides player_strategy"`
	Locale           string   `json:"locale,omitempty" jsonschema:"BCP 47 locale for the battle log"`
	Save             bool     `json:"save,omitempty" jsonschema:"persist the finished battle"`
}

// BattleSimulateResult represents the MCP tool output for one battle.
type BattleSimulateResult struct {
	ID     string   `json:"id" jsonschema:"battle identifier"`
	Seed   int64    `json:"seed" jsonschema:"seed used"`
	Locale string   `json:"locale" jsonschema:"locale the log was rendered in"`
	Winner string   `json:"winner" jsonschema:"player, opponent, or none for a draw"`
	Turns  int      `json:"turns" jsonschema:"resolved turns"`
	Saved  bool     `json:"saved" jsonschema:"whether the battle was persisted"`
	Log    []string `json:"log" jsonschema:"rendered battle log"`
}

// BattleBatchInput represents the MCP tool input for a batch of battles.
type BattleBatchInput struct {
	Seed             int64  `json:"seed" jsonschema:"seed of the first battle; later battles add their offset"`
	Count            int    `json:"count" jsonschema:"number of battles to run"`
	Workers          int    `json:"workers,omitempty" jsonschema:"concurrent battles"`
	PlayerRoster     string `json:"player_roster" jsonschema:"roster name for the player side"`
	OpponentRoster   string `json:"opponent_roster" jsonschema:"roster name for the opponent side"`
	PlayerStrategy   string `json:"player_strategy,omitempty" jsonschema:"player strategy"`
	OpponentStrategy string `json:"opponent_strategy,omitempty" jsonschema:"opponent strategy"`
}

// BattleBatchResult represents the MCP tool output for a batch.
type BattleBatchResult struct {
	Battles      int     `json:"battles" jsonschema:"battles run"`
	PlayerWins   int     `json:"player_wins" jsonschema:"battles won by the player"`
	OpponentWins int     `json:"opponent_wins" jsonschema:"battles won by the opponent"`
	Draws        int     `json:"draws" jsonschema:"battles ended by the turn limit"`
	AverageTurns float64 `json:"average_turns" jsonschema:"mean resolved turns per battle"`
}

// BattleGetInput represents the MCP tool input for reading a stored battle.
type BattleGetInput struct {
	ID string `json:"id" jsonschema:"battle identifier"`
}

// BattleRecord represents a stored battle in MCP output.
type BattleRecord struct {
	ID               string   `json:"id"`
	Seed             int64    `json:"seed"`
	Locale           string   `json:"locale"`
	PlayerRoster     string   `json:"player_roster"`
	OpponentRoster   string   `json:"opponent_roster"`
	PlayerStrategy   string   `json:"player_strategy"`
	OpponentStrategy string   `json:"opponent_strategy"`
	Winner           string   `json:"winner"`
	Turns            int      `json:"turns"`
	CreatedAt        string   `json:"created_at"`
	Log              []string `json:"log,omitempty"`
}

// BattleListInput represents the MCP tool input for listing stored battles.
type BattleListInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum battles to return"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. winner = \"player\" AND turns > 3"`
	OrderBy   string `json:"order_by,omitempty" jsonschema:"created_at or created_at desc"`
}

// BattleListResult represents one page of stored battles.
type BattleListResult struct {
	Battles       []BattleRecord `json:"battles"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// RosterListInput is empty; the tool lists every roster.
type RosterListInput struct{}

// RosterListResult represents the available roster names.
type RosterListResult struct {
	Rosters []string `json:"rosters"`
}

// BattleSimulateTool defines the MCP tool schema for running a battle.
func BattleSimulateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "battle_simulate",
		Description: "Runs one deterministic battle between two rosters and returns the log",
	}
}

// BattleBatchTool defines the MCP tool schema for batch statistics.
func BattleBatchTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "battle_batch",
		Description: "Runs a batch of seeded battles and reports win rates",
	}
}

// BattleGetTool defines the MCP tool schema for reading a stored battle.
func BattleGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "battle_get",
		Description: "Returns a stored battle with its full log",
	}
}

// BattleListTool defines the MCP tool schema for listing stored battles.
func BattleListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "battle_list",
		Description: "Lists stored battles with filtering and pagination",
	}
}

// RosterListTool defines the MCP tool schema for listing rosters.
func RosterListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roster_list",
		Description: "Lists the rosters available to battle_simulate",
	}
}

// BattleSimulateHandler runs a battle through the service.
func BattleSimulateHandler(service *app.Service, provider *content.Provider) mcp.ToolHandlerFor[BattleSimulateInput, BattleSimulateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BattleSimulateInput) (*mcp.CallToolResult, BattleSimulateResult, error) {
		player, opponent, err := app.LoadRosters(provider, input.PlayerRoster, input.OpponentRoster)
		if err != nil {
			return nil, BattleSimulateResult{}, fmt.Errorf("load rosters: %w", err)
		}
		req := app.Request{
			Seed:             input.Seed,
			Locale:           input.Locale,
			Player:           player,
			Opponent:         opponent,
			PlayerStrategy:   input.PlayerStrategy,
			OpponentStrategy: input.OpponentStrategy,
			Discard:          !input.Save,
		}
		if len(input.Moves) > 0 {
			req.Chooser = app.NewScripted(input.Moves...)
		}
		result, err := service.Run(ctx, req)
		if err != nil {
			return nil, BattleSimulateResult{}, fmt.Errorf("battle failed: %w", err)
		}
		return nil, BattleSimulateResult{
			ID:     result.ID,
			Seed:   result.Seed,
			Locale: result.Locale,
			Winner: result.Winner.String(),
			Turns:  result.Turns,
			Saved:  input.Save,
			Log:    result.Log,
		}, nil
	}
}

// BattleBatchHandler runs a batch and summarizes it.
func BattleBatchHandler(service *app.Service, provider *content.Provider) mcp.ToolHandlerFor[BattleBatchInput, BattleBatchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BattleBatchInput) (*mcp.CallToolResult, BattleBatchResult, error) {
		player, opponent, err := app.LoadRosters(provider, input.PlayerRoster, input.OpponentRoster)
		if err != nil {
			return nil, BattleBatchResult{}, fmt.Errorf("load rosters: %w", err)
		}
		batch, err := service.RunBatch(ctx, app.Request{
			Seed:             input.Seed,
			Player:           player,
			Opponent:         opponent,
			PlayerStrategy:   input.PlayerStrategy,
			OpponentStrategy: input.OpponentStrategy,
			Discard:          true,
		}, input.Count, input.Workers)
		if err != nil {
			return nil, BattleBatchResult{}, fmt.Errorf("batch failed: %w", err)
		}
		return nil, BattleBatchResult{
			Battles:      batch.Battles,
			PlayerWins:   batch.PlayerWins,
			OpponentWins: batch.OpponentWins,
			Draws:        batch.Draws,
			AverageTurns: float64(batch.TotalTurns) / float64(batch.Battles),
		}, nil
	}
}

// BattleGetHandler reads a stored battle.
func BattleGetHandler(service *app.Service) mcp.ToolHandlerFor[BattleGetInput, BattleRecord] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BattleGetInput) (*mcp.CallToolResult, BattleRecord, error) {
		if input.ID == "" {
			return nil, BattleRecord{}, fmt.Errorf("battle id is required")
		}
		record, err := service.Get(ctx, input.ID)
		if err != nil {
			return nil, BattleRecord{}, fmt.Errorf("battle get failed: %w", err)
		}
		return nil, recordToOutput(record, true), nil
	}
}

// BattleListHandler lists stored battles without their logs.
func BattleListHandler(service *app.Service) mcp.ToolHandlerFor[BattleListInput, BattleListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BattleListInput) (*mcp.CallToolResult, BattleListResult, error) {
		page, err := service.List(ctx, storage.ListOptions{
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
			Filter:    input.Filter,
			OrderBy:   input.OrderBy,
		})
		if err != nil {
			return nil, BattleListResult{}, fmt.Errorf("battle list failed: %w", err)
		}
		out := BattleListResult{Battles: make([]BattleRecord, 0, len(page.Battles)), NextPageToken: page.NextPageToken}
		for _, record := range page.Battles {
			out.Battles = append(out.Battles, recordToOutput(record, false))
		}
		return nil, out, nil
	}
}

// RosterListHandler lists roster names from the content provider.
func RosterListHandler(provider *content.Provider) mcp.ToolHandlerFor[RosterListInput, RosterListResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ RosterListInput) (*mcp.CallToolResult, RosterListResult, error) {
		names, err := provider.Rosters()
		if err != nil {
			return nil, RosterListResult{}, fmt.Errorf("roster list failed: %w", err)
		}
		return nil, RosterListResult{Rosters: names}, nil
	}
}

func recordToOutput(record storage.BattleRecord, withLog bool) BattleRecord {
	out := BattleRecord{
		ID:               record.ID,
		Seed:             record.Seed,
		Locale:           record.Locale,
		PlayerRoster:     record.PlayerRoster,
		OpponentRoster:   record.OpponentRoster,
		PlayerStrategy:   record.PlayerStrategy,
		OpponentStrategy: record.OpponentStrategy,
		Winner:           record.Winner,
		Turns:            record.Turns,
		CreatedAt:        formatTimestamp(record.CreatedAt),
	}
	if withLog {
		out.Log = record.Log
	}
	return out
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
