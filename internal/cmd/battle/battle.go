// Package battle parses battle CLI flags and runs battles from rosters.
package battle

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/pocketduel/internal/platform/cmd"
	"github.com/louisbranch/pocketduel/internal/random"
	"github.com/louisbranch/pocketduel/internal/services/battle/app"
	"github.com/louisbranch/pocketduel/internal/services/replay"
)

// Config holds battle command configuration.
type Config struct {
	DBPath           string        `env:"DB_PATH"`
	ContentDir       string        `env:"CONTENT_DIR"`
	Locale           string        `env:"LOCALE"            envDefault:"en-US"`
	TurnLimit        int           `env:"TURN_LIMIT"        envDefault:"200"`
	Scripts          []string      `env:"SCRIPTS"           envSeparator:","`
	PlayerRoster     string        `env:"PLAYER_ROSTER"     envDefault:"red"`
	OpponentRoster   string        `env:"OPPONENT_ROSTER"   envDefault:"blue"`
	PlayerStrategy   string        `env:"PLAYER_STRATEGY"   envDefault:"strategic"`
	OpponentStrategy string        `env:"OPPONENT_STRATEGY" envDefault:"strategic"`
	Seed             int64         `env:"SEED"              envDefault:"-1"`
	Batch            int           `env:"BATCH"             envDefault:"1"`
	Workers          int           `env:"WORKERS"           envDefault:"4"`
	Pace             time.Duration `env:"PACE"              envDefault:"0s"`
	// Moves scripts the player side, one move id per turn.
	Moves []string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path for saving battles (empty disables saving)")
	fs.StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "content directory (empty uses built-in content)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "battle log locale")
	fs.IntVar(&cfg.TurnLimit, "turn-limit", cfg.TurnLimit, "turns before a battle ends in a draw")
	fs.StringVar(&cfg.PlayerRoster, "player", cfg.PlayerRoster, "player roster name")
	fs.StringVar(&cfg.OpponentRoster, "opponent", cfg.OpponentRoster, "opponent roster name")
	fs.StringVar(&cfg.PlayerStrategy, "player-strategy", cfg.PlayerStrategy, "player strategy (strategic, random, or a script name)")
	fs.StringVar(&cfg.OpponentStrategy, "opponent-strategy", cfg.OpponentStrategy, "opponent strategy (strategic, random, or a script name)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (negative picks a random one)")
	fs.IntVar(&cfg.Batch, "batch", cfg.Batch, "battles to run; more than one prints win rates")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent battles in a batch")
	fs.DurationVar(&cfg.Pace, "pace", cfg.Pace, "delay between printed log lines")
	fs.Func("script", "Lua strategy file, registered under its base name (repeatable)", func(value string) error {
		cfg.Scripts = append(cfg.Scripts, value)
		return nil
	})
	fs.Func("moves", "comma-separated player move ids, one per turn", func(value string) error {
		cfg.Moves = splitList(value)
		return nil
	})
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run plays the configured battles and prints them to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBattle, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdout)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
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

	player, opponent, err := app.LoadRosters(rt.Content, cfg.PlayerRoster, cfg.OpponentRoster)
	if err != nil {
		return err
	}
	seed := cfg.Seed
	if seed < 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}
	req := app.Request{
		Seed:             seed,
		Locale:           cfg.Locale,
		Player:           player,
		Opponent:         opponent,
		PlayerStrategy:   cfg.PlayerStrategy,
		OpponentStrategy: cfg.OpponentStrategy,
	}

	if cfg.Batch > 1 {
		if len(cfg.Moves) > 0 {
			return fmt.Errorf("-moves cannot be combined with -batch")
		}
		batch, err := rt.Service.RunBatch(ctx, req, cfg.Batch, cfg.Workers)
		if err != nil {
			return err
		}
		printBatch(out, seed, batch)
		return nil
	}

	if len(cfg.Moves) > 0 {
		req.Chooser = app.NewScripted(cfg.Moves...)
	}
	result, err := rt.Service.Run(ctx, req)
	if err != nil {
		return err
	}
	err = replay.Pacer{Delay: cfg.Pace}.Play(ctx, result.Log, func(_ int, line string) error {
		_, err := fmt.Fprintln(out, line)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nbattle %s seed=%d winner=%s turns=%d\n", result.ID, result.Seed, result.Winner, result.Turns)
	return nil
}

func printBatch(out io.Writer, seed int64, batch app.BatchResult) {
	percent := func(n int) float64 { return 100 * float64(n) / float64(batch.Battles) }
	fmt.Fprintf(out, "battles:       %d (seeds %d-%d)\n", batch.Battles, seed, seed+int64(batch.Battles)-1)
	fmt.Fprintf(out, "player wins:   %d (%.1f%%)\n", batch.PlayerWins, percent(batch.PlayerWins))
	fmt.Fprintf(out, "opponent wins: %d (%.1f%%)\n", batch.OpponentWins, percent(batch.OpponentWins))
	fmt.Fprintf(out, "draws:         %d (%.1f%%)\n", batch.Draws, percent(batch.Draws))
	fmt.Fprintf(out, "average turns: %.2f\n", float64(batch.TotalTurns)/float64(batch.Battles))
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
