package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const battleLogURIPrefix = "battle://"

// BattleLogResourceTemplate defines the readable log of a stored battle.
func BattleLogResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "battle_log",
		Title:       "Battle log",
		Description: "Rendered log of a stored battle, one line per event",
		MIMEType:    "text/plain",
		URITemplate: "battle://{battle_id}/log",
	}
}

// BattleLogResourceHandler reads a stored battle log.
func BattleLogResourceHandler(service *app.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if req == nil || req.Params == nil {
			return nil, fmt.Errorf("resource uri is required")
		}
		uri := req.Params.URI
		battleID, err := parseBattleIDFromURI(uri)
		if err != nil {
			return nil, err
		}
		record, err := service.Get(ctx, battleID)
		if err != nil {
			return nil, fmt.Errorf("battle get failed: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "text/plain",
					Text:     strings.Join(record.Log, "\n"),
				},
			},
		}, nil
	}
}

// parseBattleIDFromURI extracts the id from battle://{battle_id}/log.
func parseBattleIDFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), battleLogURIPrefix)
	if !ok {
		return "", fmt.Errorf("uri must start with %s", battleLogURIPrefix)
	}
	battleID, ok := strings.CutSuffix(rest, "/log")
	if !ok || battleID == "" || strings.Contains(battleID, "/") {
		return "", fmt.Errorf("uri must match battle://{battle_id}/log")
	}
	return battleID, nil
}
