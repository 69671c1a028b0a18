package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/game"
	"github.com/xtding233/sticker-gacha/internal/storage"
	"github.com/xtding233/sticker-gacha/internal/token"
)

// Session is one player's exclusive engine, wallet and collection.
// Use it only inside Manager.With.
type Session struct {
	id      string
	mu      sync.Mutex
	evicted atomic.Bool // set once the cache drops the session

	refs    int  // callers inside Manager.With, guarded by Manager.mu
	unsaved bool // last write-through failed, guarded by Manager.mu

	game   *game.Game
	engine *gacha.Engine
	wallet *token.Wallet
	owned  map[string]int
	dirty  bool
}

func newSession(id string, g *game.Game, balance int, rng gacha.RandomSource) (*Session, error) {
	s := &Session{
		id:     id,
		game:   g,
		wallet: token.NewWallet(balance),
		owned:  make(map[string]int),
	}
	engine, err := gacha.NewEngine(gacha.Config{
		Table:          g.Table,
		Catalog:        g.Catalog,
		Wallet:         s.wallet,
		RNG:            rng,
		LedgerCapacity: g.LedgerCapacity,
		Owned:          func(itemID string) int { return s.owned[itemID] },
	})
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return s, nil
}

func (s *Session) ID() string       { return s.id }
func (s *Session) Game() *game.Game { return s.game }
func (s *Session) Balance() int     { return s.wallet.Balance() }

func (s *Session) PityStatus() []gacha.PityStatus { return s.engine.PityStatus() }

// Ledger returns up to limit recent pulls, newest first.
func (s *Session) Ledger(limit int) []gacha.PullResult { return s.engine.Ledger(limit) }

// Owned returns how many copies of the item the player holds.
func (s *Session) Owned(itemID string) int { return s.owned[itemID] }

// OpenPack opens a pack from the session's game and adds the pulls to the collection.
func (s *Session) OpenPack(ctx context.Context, pack game.Pack) (gacha.PackResult, error) {
	res, err := s.engine.OpenPack(ctx, pack.Request())
	if err != nil || res.IsDeclined() {
		return res, err
	}
	for _, pr := range res.Pulls {
		s.owned[pr.Item.ID]++
	}
	s.dirty = true
	return res, nil
}

// Credit adds tokens to the wallet.
func (s *Session) Credit(amount int) {
	s.wallet.Credit(amount)
	s.dirty = true
}

func (s *Session) record() storage.SessionRecord {
	owned := make(map[string]int, len(s.owned))
	for k, v := range s.owned {
		owned[k] = v
	}
	return storage.SessionRecord{
		ID:          s.id,
		GameVersion: s.game.Version,
		State:       s.engine.State(),
		Owned:       owned,
		Balance:     s.wallet.Balance(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func (s *Session) restore(rec storage.SessionRecord) {
	s.engine.RestoreState(rec.State)
	for k, v := range rec.Owned {
		if v > 0 {
			s.owned[k] = v
		}
	}
}
