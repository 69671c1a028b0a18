package game

import (
	"fmt"
	"log/slog"
	"sync"
)

// Provider holds the current Game for one game/event pair and swaps it on
// reload. Sessions keep the *Game they were created with.
type Provider struct {
	loader *Loader
	game   string
	event  string

	mu      sync.RWMutex
	current *Game
}

// NewProvider loads and builds the initial Game. A broken config is fatal here.
func NewProvider(loader *Loader, game, event string) (*Provider, error) {
	p := &Provider{loader: loader, game: game, event: event}
	g, err := p.build()
	if err != nil {
		return nil, err
	}
	p.current = g
	return p, nil
}

func (p *Provider) Current() *Game {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Files are the YAML files backing this provider, for the watcher.
func (p *Provider) Files() []string { return p.loader.Paths().Files(p.game, p.event) }

// Reload re-reads the files. On error the previous Game stays current.
func (p *Provider) Reload() error {
	p.loader.Invalidate()
	g, err := p.build()
	if err != nil {
		slog.Error("Game config reload failed, keeping previous version", "game", p.game, "error", err)
		return err
	}
	p.mu.Lock()
	p.current = g
	p.mu.Unlock()
	slog.Info("Game config reloaded", "game", p.game, "event", p.event, "version", g.Version)
	return nil
}

func (p *Provider) build() (*Game, error) {
	raw, err := p.loader.LoadMerged(p.game, p.event)
	if err != nil {
		return nil, err
	}
	g, err := Build(raw)
	if err != nil {
		return nil, fmt.Errorf("game %q: %w", p.game, err)
	}
	return g, nil
}
