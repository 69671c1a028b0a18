package gacha

import (
	"context"
	"errors"

	"github.com/xtding233/sticker-gacha/internal/logger"
	"github.com/xtding233/sticker-gacha/internal/metrics"
)

// Config wires one session's engine.
type Config struct {
	Table          *RarityTable
	Catalog        Catalog
	Wallet         Wallet
	RNG            RandomSource // nil -> DefaultRNG
	LedgerCapacity int          // < 1 -> DefaultLedgerCapacity

	// Owned reports how many copies of an item the player already holds.
	// When set, pulls come back with IsNew filled in.
	Owned func(itemID string) int
}

// Engine is the per-session facade: it exclusively owns a pity tracker and a ledger.
// It is not safe for concurrent use; callers serialize access per session.
type Engine struct {
	table  *RarityTable
	pity   *PityTracker
	packs  *PackResolver
	ledger *PullLedger
}

// NewEngine validates the catalog against the table and builds a fresh session
// (all pity counters 0, empty ledger).
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Table == nil {
		return nil, configErr([]string{"rarity table is required"})
	}
	if cfg.Wallet == nil {
		return nil, errors.New("wallet is required")
	}
	rng := cfg.RNG
	if rng == nil {
		rng = DefaultRNG()
	}

	items, err := NewItemSelector(cfg.Table, cfg.Catalog, rng)
	if err != nil {
		return nil, err
	}
	pity := NewPityTracker(cfg.Table)
	ledger := NewPullLedger(cfg.LedgerCapacity)
	drops := NewDropResolver(cfg.Table, pity, rng)

	packs := NewPackResolver(cfg.Table, drops, items, cfg.Wallet, ledger)
	packs.SetOwnership(cfg.Owned)

	return &Engine{
		table:  cfg.Table,
		pity:   pity,
		packs:  packs,
		ledger: ledger,
	}, nil
}

// OpenPack opens a pack and records its pulls in the ledger.
// A decline is a result, not an error.
func (e *Engine) OpenPack(ctx context.Context, req PackRequest) (PackResult, error) {
	log := logger.FromContext(ctx)

	res, err := e.packs.OpenPack(req)
	if err != nil {
		metrics.PacksTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		log.Warn("Pack request rejected", "pulls", req.PullCount, "cost", req.Cost, "error", err)
		return PackResult{}, err
	}
	if res.IsDeclined() {
		metrics.PacksTotal.WithLabelValues(metrics.OutcomeDeclined).Inc()
		log.Info("Pack declined", "cost", req.Cost, "reason", res.Declined.Reason)
		return res, nil
	}

	metrics.PacksTotal.WithLabelValues(metrics.OutcomeOpened).Inc()
	metrics.CurrencySpent.Add(float64(req.Cost))
	for i, pr := range res.Pulls {
		metrics.PullsTotal.WithLabelValues(string(pr.Tier)).Inc()
		if pr.IsPity {
			metrics.PityTriggersTotal.WithLabelValues(string(pr.Tier)).Inc()
			log.Debug("Pity triggered", "pull", i+1, "tier", pr.Tier)
		}
		if pr.Fallback {
			metrics.FallbacksTotal.Inc()
			log.Debug("Weighted draw fell back to rarest candidate", "pull", i+1, "tier", pr.Tier)
		}
	}
	log.Info("Pack opened", "pulls", len(res.Pulls), "cost", req.Cost, "guaranteed", req.GuaranteedMinimum)
	return res, nil
}

// PityStatus reports progress toward each tier's guarantee, common -> rare.
func (e *Engine) PityStatus() []PityStatus { return e.pity.Status() }

// Ledger returns up to limit recent pulls, newest first.
func (e *Engine) Ledger(limit int) []PullResult { return e.ledger.Recent(limit) }

// Table returns the engine's immutable rarity table.
func (e *Engine) Table() *RarityTable { return e.table }

// State captures the session for persistence.
func (e *Engine) State() SessionState {
	return SessionState{Pity: e.pity.Snapshot(), Ledger: e.ledger.Recent(0)}
}

// RestoreState loads persisted session state.
func (e *Engine) RestoreState(s SessionState) {
	e.pity.Restore(s.Pity)
	e.ledger.Restore(s.Ledger)
}
