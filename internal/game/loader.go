package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/game/event files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "games", "default.yaml")
}
func (p Paths) GamePath(game string) string {
	return filepath.Join(p.BaseDir, "games", game+".yaml")
}
func (p Paths) EventPath(game, event string) string {
	return filepath.Join(p.BaseDir, "games", game, "events", event+".yaml")
}

// Files lists the files that make up one merged config, in merge order.
func (p Paths) Files(game, event string) []string {
	files := []string{p.DefaultPath(), p.GamePath(game)}
	if event != "" {
		files = append(files, p.EventPath(game, event))
	}
	return files
}

// Loader reads YAML configs and merges default → game → event.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "game" or "game/event"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → game → event (event optional).
// The default file must exist; the others may be absent. Malformed YAML in
// any layer is an error.
func (l *Loader) LoadMerged(game, event string) (RawConfig, error) {
	key := game
	if event != "" {
		key = game + "/" + event
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, found, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	if !found {
		return RawConfig{}, fmt.Errorf("read default: %s: %w", l.paths.DefaultPath(), os.ErrNotExist)
	}
	gameCfg, _, err := readYAML(l.paths.GamePath(game))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read game %q: %w", game, err)
	}
	merged := mergeRaw(defCfg, gameCfg)
	if event != "" {
		eventCfg, _, err := readYAML(l.paths.EventPath(game, event))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read event %q: %w", event, err)
		}
		merged = mergeRaw(merged, eventCfg)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return a zero cfg and found=false.
func readYAML(path string) (RawConfig, bool, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, true, nil
}

// mergeRaw overlays b on a. Scalars override when set; the tiers, items and
// packs lists and the shop are replaced wholesale when b provides them.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if len(b.Tiers) > 0 {
		out.Tiers = append([]TierConfig(nil), b.Tiers...)
	}
	if len(b.Items) > 0 {
		out.Items = append([]ItemConfig(nil), b.Items...)
	}
	if len(b.Packs) > 0 {
		out.Packs = append([]PackConfig(nil), b.Packs...)
	}

	// tokens
	switch {
	case out.Tokens == nil && b.Tokens != nil:
		c := *b.Tokens
		out.Tokens = &c
	case out.Tokens != nil && b.Tokens != nil:
		c := *out.Tokens
		if b.Tokens.Name != "" {
			c.Name = b.Tokens.Name
		}
		if b.Tokens.PerDraw != nil {
			c.PerDraw = b.Tokens.PerDraw
		}
		if b.Tokens.PerTenDraw != nil {
			c.PerTenDraw = b.Tokens.PerTenDraw
		}
		out.Tokens = &c
	}

	if b.Ledger != nil {
		c := *b.Ledger
		out.Ledger = &c
	}
	if b.Shop != nil {
		c := *b.Shop
		c.SKUs = append([]SKUConfig(nil), b.Shop.SKUs...)
		out.Shop = &c
	}
	return out
}
