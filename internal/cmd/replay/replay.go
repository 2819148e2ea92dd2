// Package replay parses replay server flags and starts the HTTP, WebSocket
// and health listeners.
package replay

import (
	"context"
	"errors"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/pocketduel/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/pocketduel/internal/platform/grpc"
	"github.com/louisbranch/pocketduel/internal/platform/timeouts"
	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	replayservice "github.com/louisbranch/pocketduel/internal/services/replay"
)

// Config holds replay command configuration.
type Config struct {
	HTTPAddr   string        `env:"REPLAY_HTTP_ADDR" envDefault:"localhost:8090"`
	GRPCAddr   string        `env:"REPLAY_GRPC_ADDR" envDefault:"localhost:8091"`
	DBPath     string        `env:"DB_PATH"          envDefault:"data/battles.db"`
	ContentDir string        `env:"CONTENT_DIR"`
	TurnLimit  int           `env:"TURN_LIMIT"       envDefault:"200"`
	Scripts    []string      `env:"SCRIPTS"          envSeparator:","`
	Delay      time.Duration `env:"REPLAY_DELAY"     envDefault:"600ms"`

	// HealthCheck probes a running server's health endpoint and exits.
	HealthCheck bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP and WebSocket listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path for battle records")
	fs.StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "content directory (empty uses built-in content)")
	fs.IntVar(&cfg.TurnLimit, "turn-limit", cfg.TurnLimit, "turns before a battle ends in a draw")
	fs.DurationVar(&cfg.Delay, "delay", cfg.Delay, "default pause between replayed lines")
	fs.BoolVar(&cfg.HealthCheck, "healthcheck", false, "probe the gRPC health endpoint of a running server and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the replay server until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.HealthCheck {
		return healthCheck(ctx, cfg)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceReplay, func(ctx context.Context) error {
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

		handler := replayservice.NewHandler(replayservice.HandlerConfig{
			Service: rt.Service,
			Content: rt.Content,
			Delay:   cfg.Delay,
		})
		server, err := replayservice.NewServer(cfg.HTTPAddr, cfg.GRPCAddr, handler)
		if err != nil {
			return err
		}
		return server.Serve(ctx)
	})
}

func healthCheck(ctx context.Context, cfg Config) error {
	if cfg.GRPCAddr == "" {
		return errors.New("healthcheck requires a gRPC address")
	}
	return platformgrpc.ProbeHealth(ctx, cfg.GRPCAddr, replayservice.HealthService, timeouts.GRPCDial)
}
