package gacha

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/sticker-gacha/internal/metrics"
)

func newTestEngine(t *testing.T, seed uint64, balance int) (*Engine, *fakeWallet) {
	t.Helper()
	table := mustTable(t, sixTiers())
	wallet := &fakeWallet{balance: balance}
	e, err := NewEngine(Config{
		Table:          table,
		Catalog:        catalogFor(table),
		Wallet:         wallet,
		RNG:            NewSeededRNG(seed),
		LedgerCapacity: 25,
	})
	require.NoError(t, err)
	return e, wallet
}

func TestNewEngineValidates(t *testing.T) {
	table := mustTable(t, sixTiers())

	_, err := NewEngine(Config{Catalog: catalogFor(table), Wallet: &fakeWallet{}})
	assert.ErrorIs(t, err, ErrConfig)

	cat := catalogFor(table)
	delete(cat, "uncommon")
	_, err = NewEngine(Config{Table: table, Catalog: cat, Wallet: &fakeWallet{}})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewEngine(Config{Table: table, Catalog: catalogFor(table)})
	assert.Error(t, err)
}

func TestEngineDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	req := PackRequest{PullCount: 10, Cost: 100, GuaranteedMinimum: "epic"}

	a, _ := newTestEngine(t, 99, 1000)
	b, _ := newTestEngine(t, 99, 1000)
	a.RestoreState(SessionState{Pity: map[TierID]int{"rare": 7, "legendary": 30}})
	b.RestoreState(SessionState{Pity: map[TierID]int{"rare": 7, "legendary": 30}})

	for i := 0; i < 5; i++ {
		ra, err := a.OpenPack(ctx, req)
		require.NoError(t, err)
		rb, err := b.OpenPack(ctx, req)
		require.NoError(t, err)
		require.Equal(t, ra, rb, "pack %d", i)
	}
	assert.Equal(t, a.PityStatus(), b.PityStatus())
}

func TestEngineLedgerAndStatus(t *testing.T) {
	e, wallet := newTestEngine(t, 1, 500)

	res, err := e.OpenPack(context.Background(), PackRequest{PullCount: 10, Cost: 100})
	require.NoError(t, err)
	require.Len(t, res.Pulls, 10)
	assert.Equal(t, 400, wallet.balance)

	recent := e.Ledger(3)
	require.Len(t, recent, 3)
	assert.Equal(t, res.Pulls[9], recent[0])
	assert.Equal(t, res.Pulls[7], recent[2])
	assert.Len(t, e.Ledger(0), 10)

	status := e.PityStatus()
	require.Len(t, status, 6)
	last := res.Pulls[9].Tier
	for _, s := range status {
		if s.TierID == last {
			assert.Equal(t, 0, s.PullsSinceLast)
		}
	}
}

func TestEngineStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, 5, 1000)
	_, err := e.OpenPack(ctx, PackRequest{PullCount: 10, Cost: 10})
	require.NoError(t, err)

	saved := e.State()
	saved.Pity["retired"] = 12

	restored, _ := newTestEngine(t, 5, 1000)
	restored.RestoreState(saved)

	delete(saved.Pity, "retired")
	assert.Equal(t, saved.Pity, restored.State().Pity)
	assert.Equal(t, e.Ledger(0), restored.Ledger(0))
}

func TestEngineLedgerLossDoesNotChangeResolution(t *testing.T) {
	ctx := context.Background()
	req := PackRequest{PullCount: 10, Cost: 1}
	a, _ := newTestEngine(t, 8, 100)
	b, _ := newTestEngine(t, 8, 100)

	_, err := a.OpenPack(ctx, req)
	require.NoError(t, err)
	_, err = b.OpenPack(ctx, req)
	require.NoError(t, err)

	b.ledger.Restore(nil)

	ra, err := a.OpenPack(ctx, req)
	require.NoError(t, err)
	rb, err := b.OpenPack(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, ra.Pulls, rb.Pulls)
}

func TestEngineMetrics(t *testing.T) {
	e, _ := newTestEngine(t, 3, 10)
	declined := metrics.PacksTotal.WithLabelValues(metrics.OutcomeDeclined)
	opened := metrics.PacksTotal.WithLabelValues(metrics.OutcomeOpened)
	invalid := metrics.PacksTotal.WithLabelValues(metrics.OutcomeInvalid)
	d0, o0, i0 := testutil.ToFloat64(declined), testutil.ToFloat64(opened), testutil.ToFloat64(invalid)

	ctx := context.Background()
	res, err := e.OpenPack(ctx, PackRequest{PullCount: 10, Cost: 50})
	require.NoError(t, err)
	assert.True(t, res.IsDeclined())

	_, err = e.OpenPack(ctx, PackRequest{PullCount: 1, Cost: 10})
	require.NoError(t, err)

	_, err = e.OpenPack(ctx, PackRequest{PullCount: 0, Cost: 1})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Equal(t, d0+1, testutil.ToFloat64(declined))
	assert.Equal(t, o0+1, testutil.ToFloat64(opened))
	assert.Equal(t, i0+1, testutil.ToFloat64(invalid))
}

func TestEngineMarksNewAgainstOwnership(t *testing.T) {
	table := mustTable(t, []Tier{
		{ID: "common", Probability: 1, PityThreshold: 1000},
	})
	owned := map[string]int{"common-1": 3}
	e, err := NewEngine(Config{
		Table:   table,
		Catalog: catalogFor(table),
		Wallet:  &fakeWallet{balance: 10},
		RNG:     seq(0.1, 0.1, 0.1, 0.9),
		Owned:   func(id string) int { return owned[id] },
	})
	require.NoError(t, err)

	// one source serves tiers and items: tier, item, tier, item, ...
	res, err := e.OpenPack(context.Background(), PackRequest{PullCount: 2})
	require.NoError(t, err)
	require.Len(t, res.Pulls, 2)
	assert.Equal(t, "common-1", res.Pulls[0].Item.ID)
	assert.False(t, res.Pulls[0].IsNew)
	assert.Equal(t, "common-2", res.Pulls[1].Item.ID)
	assert.True(t, res.Pulls[1].IsNew)

	recent := e.Ledger(0)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].IsNew, "ledger keeps IsNew")
}
