package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TypeEffectivenessInput represents the MCP tool input for a chart lookup.
type TypeEffectivenessInput struct {
	Attacking string   `json:"attacking" jsonschema:"attacking move type, e.g. electric"`
	Defending []string `json:"defending" jsonschema:"one or two defending creature types"`
}

// TypeEffectivenessResult represents the MCP tool output for a chart lookup.
type TypeEffectivenessResult struct {
	Attacking     string   `json:"attacking" jsonschema:"attacking type"`
	Defending     []string `json:"defending" jsonschema:"defending types"`
	Multiplier    float64  `json:"multiplier" jsonschema:"product of the per-type multipliers"`
	Effectiveness string   `json:"effectiveness" jsonschema:"no_effect, not_very_effective, neutral, or super_effective"`
}

// TypeEffectivenessTool defines the MCP tool schema for chart lookups.
func TypeEffectivenessTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "type_effectiveness",
		Description: "Looks up the damage multiplier of an attacking type against one or two defending types",
	}
}

// TypeEffectivenessHandler resolves a matchup from the service chart.
func TypeEffectivenessHandler(service *app.Service) mcp.ToolHandlerFor[TypeEffectivenessInput, TypeEffectivenessResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input TypeEffectivenessInput) (*mcp.CallToolResult, TypeEffectivenessResult, error) {
		matchup, err := service.TypeEffectiveness(input.Attacking, input.Defending...)
		if err != nil {
			return nil, TypeEffectivenessResult{}, fmt.Errorf("type lookup failed: %w", err)
		}
		defending := make([]string, 0, len(matchup.Defending))
		for _, t := range matchup.Defending {
			defending = append(defending, string(t))
		}
		return nil, TypeEffectivenessResult{
			Attacking:     string(matchup.Attacking),
			Defending:     defending,
			Multiplier:    matchup.Multiplier,
			Effectiveness: matchup.Effectiveness.String(),
		}, nil
	}
}
