package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/pocketduel/internal/platform/i18n/catalog"
	"github.com/louisbranch/pocketduel/internal/services/battle/content"
	"github.com/louisbranch/pocketduel/internal/services/battle/domain/ai"
	battlesqlite "github.com/louisbranch/pocketduel/internal/services/battle/storage/sqlite"
)

// RuntimeConfig describes the battle runtime shared by every binary.
type RuntimeConfig struct {
	// ContentDir holds typechart.yaml, moves.yaml and rosters/. Empty uses
	// the built-in content.
	ContentDir string
	// DBPath enables persistence when set.
	DBPath    string
	TurnLimit int
	// Scripts are Lua strategy files, registered under their base name.
	Scripts []string
}

// Runtime bundles a configured service with its content and store.
type Runtime struct {
	Service *Service
	Content *content.Provider
	store   *battlesqlite.Store
}

// OpenRuntime loads content, opens storage and registers scripts.
func OpenRuntime(ctx context.Context, cfg RuntimeConfig) (*Runtime, error) {
	provider := content.Embedded()
	if dir := strings.TrimSpace(cfg.ContentDir); dir != "" {
		provider = content.NewProvider(os.DirFS(dir))
	}
	chart, err := provider.TypeChart()
	if err != nil {
		return nil, fmt.Errorf("load type chart: %w", err)
	}

	rt := &Runtime{Content: provider}
	svcCfg := Config{Chart: chart, Catalog: catalog.Default(), TurnLimit: cfg.TurnLimit}
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		store, err := openBattleStore(ctx, path)
		if err != nil {
			return nil, err
		}
		rt.store = store
		svcCfg.Store = store
	}
	rt.Service = NewService(svcCfg)

	for _, path := range cfg.Scripts {
		if err := rt.registerScript(path); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}
	return rt, nil
}

func (rt *Runtime) registerScript(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read strategy script: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	script, err := ai.NewScript(filepath.Base(path), string(source), rt.Service.Chart())
	if err != nil {
		return toAppError(err)
	}
	return rt.Service.RegisterStrategy(name, script)
}

// Close releases the store, if any.
func (rt *Runtime) Close() error {
	if rt == nil || rt.store == nil {
		return nil
	}
	return rt.store.Close()
}

func openBattleStore(ctx context.Context, path string) (*battlesqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := battlesqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open battle sqlite store: %w", err)
	}
	return store, nil
}
