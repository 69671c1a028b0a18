package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/game"
	"github.com/xtding233/sticker-gacha/internal/logger"
	"github.com/xtding233/sticker-gacha/internal/metrics"
	"github.com/xtding233/sticker-gacha/internal/storage"
)

// ErrSessionNotFound is returned for ids that are neither cached nor stored.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotSaved is joined to With's result when fn changed the session but the
// write-through failed. The change is kept in memory and saved on a later With.
var ErrNotSaved = errors.New("session not saved")

// GameSource hands out the game definition new sessions are built from.
type GameSource interface {
	Current() *game.Game
}

// Options tune the in-memory session cache.
type Options struct {
	TTL        time.Duration // idle time before a session leaves memory
	MaxEntries int
	NewRNG     func() gacha.RandomSource // nil -> gacha.DefaultRNG
}

// Manager owns every live session. Each session is used by one caller at a
// time through With; different sessions never share state. With a store,
// sessions are written through after every change and reloaded after they
// leave the cache.
type Manager struct {
	games  GameSource
	store  storage.SessionStore // optional
	newRNG func() gacha.RandomSource
	cache  *expirable.LRU[string, *Session]

	loading chan struct{} // serializes store loads and revivals

	mu sync.Mutex // guards Session.refs and retired
	// retired holds sessions the cache dropped while a caller still held
	// them, or before their last change was saved. get hands these back
	// instead of loading a stale copy from the store.
	retired map[string]*Session
}

func NewManager(games GameSource, store storage.SessionStore, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.MaxEntries < 1 {
		opts.MaxEntries = 10000
	}
	if opts.NewRNG == nil {
		opts.NewRNG = gacha.DefaultRNG
	}
	m := &Manager{
		games:   games,
		store:   store,
		newRNG:  opts.NewRNG,
		loading: make(chan struct{}, 1),
		retired: make(map[string]*Session),
	}
	m.cache = expirable.NewLRU[string, *Session](opts.MaxEntries, m.onEvict, opts.TTL)
	return m
}

// onEvict runs under the cache's lock; it must not call back into the cache.
func (m *Manager) onEvict(id string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.evicted.Store(true)
	if s.refs > 0 || s.unsaved {
		m.retired[id] = s
	}
}

// acquire pins s so an eviction keeps it reachable through retired.
func (m *Manager) acquire(s *Session) {
	m.mu.Lock()
	s.refs++
	m.mu.Unlock()
}

// release unpins s and forgets it once nobody holds it and it is saved.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 && !s.unsaved && m.retired[s.id] == s {
		delete(m.retired, s.id)
	}
}

// revive takes a retired session back, pinned for the caller.
func (m *Manager) revive(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.retired[id]
	if !ok {
		return nil, false
	}
	delete(m.retired, id)
	s.evicted.Store(false)
	s.refs++
	return s, true
}

// Create starts a session on the current game with the given balance.
func (m *Manager) Create(ctx context.Context, balance int) (*Session, error) {
	g := m.games.Current()
	s, err := newSession(uuid.NewString(), g, balance, m.newRNG())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if m.store != nil {
		if err := m.store.SaveSession(ctx, s.record()); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	m.cache.Add(s.id, s)
	m.updateGauge()
	logger.FromContext(ctx).Info("Session created", logger.AttrSessionID, s.id, "balance", balance, "game_version", g.Version)
	return s, nil
}

// With runs fn holding the session's lock and persists the session when fn
// changed it. fn must not retain s or call back into the Manager.
func (m *Manager) With(ctx context.Context, id string, fn func(s *Session) error) error {
	for {
		s, err := m.get(ctx, id)
		if err != nil {
			return err
		}
		s.mu.Lock()
		if s.evicted.Load() {
			// dropped between lookup and lock; get revives it or reloads it
			s.mu.Unlock()
			m.release(s)
			continue
		}

		err = fn(s)
		if s.dirty && m.store != nil {
			if serr := m.store.SaveSession(ctx, s.record()); serr != nil {
				err = errors.Join(err, fmt.Errorf("%w: %s: %w", ErrNotSaved, id, serr))
				m.setUnsaved(s, true)
			} else {
				s.dirty = false
				m.setUnsaved(s, false)
			}
		}
		if !s.evicted.Load() {
			m.cache.Add(id, s) // renews the idle ttl
		}
		s.mu.Unlock()
		m.release(s)
		return err
	}
}

func (m *Manager) setUnsaved(s *Session, unsaved bool) {
	m.mu.Lock()
	s.unsaved = unsaved
	m.mu.Unlock()
}

// get returns the session pinned; callers release it.
func (m *Manager) get(ctx context.Context, id string) (*Session, error) {
	if s, ok := m.cache.Get(id); ok {
		m.acquire(s)
		return s, nil
	}

	select {
	case m.loading <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-m.loading }()

	if s, ok := m.cache.Get(id); ok {
		m.acquire(s)
		return s, nil
	}
	m.cache.Remove(id) // drop an expired entry the reaper hasn't reached yet

	if s, ok := m.revive(id); ok {
		m.cache.Add(id, s)
		m.updateGauge()
		logger.FromContext(ctx).Debug("Session revived", logger.AttrSessionID, id)
		return s, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	rec, err := m.store.LoadSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	g := m.games.Current()
	s, err := newSession(id, g, rec.Balance, m.newRNG())
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	s.restore(rec)
	s.refs = 1
	m.cache.Add(id, s)
	m.updateGauge()
	logger.FromContext(ctx).Info("Session restored", logger.AttrSessionID, id,
		"saved_version", rec.GameVersion, "game_version", g.Version)
	return s, nil
}

func (m *Manager) updateGauge() { metrics.ActiveSessions.Set(float64(m.cache.Len())) }

// Len is the number of sessions held in memory.
func (m *Manager) Len() int { return m.cache.Len() }

// Close drops every cached session. Stored sessions stay loadable.
func (m *Manager) Close() {
	m.cache.Purge()
	m.updateGauge()
}
