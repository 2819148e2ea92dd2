// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/pocketduel/internal/platform/cmd"
	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	mcpservice "github.com/louisbranch/pocketduel/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr   string   `env:"MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport  string   `env:"MCP_TRANSPORT" envDefault:"stdio"`
	DBPath     string   `env:"DB_PATH"`
	ContentDir string   `env:"CONTENT_DIR"`
	TurnLimit  int      `env:"TURN_LIMIT"    envDefault:"200"`
	Scripts    []string `env:"SCRIPTS"       envSeparator:","`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path for battle records (empty disables saving)")
	fs.StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "content directory (empty uses built-in content)")
	fs.IntVar(&cfg.TurnLimit, "turn-limit", cfg.TurnLimit, "turns before a battle ends in a draw")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		rt, err := app.OpenRuntime(ctx, app.RuntimeConfig{
			ContentDir: cfg.ContentDir,
			DBPath:     cfg.DBPath,
			TurnLimit:  cfg.TurnLimit,
			Scripts:    cfg.Scripts,
		})
		if err != nil {
			return err
		}
		defer rt.Close()

		return mcpservice.Run(ctx, mcpservice.Config{
			Transport: mcpservice.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
			Service:   rt.Service,
			Content:   rt.Content,
		})
	})
}
