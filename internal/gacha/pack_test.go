package gacha

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOpenPackResolvesInOrder(t *testing.T) {
	table := mustTable(t, sixTiers())
	wallet := &fakeWallet{balance: 100}
	packs, _, ledger := newPackRig(t, table, seq(0.1, 0.6, 0.85), wallet)

	res, err := packs.OpenPack(PackRequest{PullCount: 3, Cost: 30})
	require.NoError(t, err)
	require.False(t, res.IsDeclined())
	require.Len(t, res.Pulls, 3)

	assert.Equal(t, TierID("common"), res.Pulls[0].Tier)
	assert.Equal(t, TierID("uncommon"), res.Pulls[1].Tier)
	assert.Equal(t, TierID("rare"), res.Pulls[2].Tier)
	for _, pr := range res.Pulls {
		assert.Equal(t, pr.Tier, pr.Item.Tier)
	}
	assert.Equal(t, 70, wallet.balance)
	assert.Equal(t, 3, ledger.Len())
	assert.Equal(t, res.Pulls[2], ledger.Recent(1)[0])
}

func TestOpenPackGuaranteeAppliesToFinalPullOnly(t *testing.T) {
	table := mustTable(t, sixTiers())
	wallet := &fakeWallet{balance: 1 << 30}
	packs, _, _ := newPackRig(t, table, NewSeededRNG(2024), wallet)
	epicRank := table.Rank("epic")

	belowFloorEarly := 0
	for n := 0; n < 300; n++ {
		res, err := packs.OpenPack(PackRequest{PullCount: 10, Cost: 10, GuaranteedMinimum: "epic"})
		require.NoError(t, err)
		require.Len(t, res.Pulls, 10)
		assert.GreaterOrEqual(t, table.Rank(res.Pulls[9].Tier), epicRank, "pack %d final pull %s", n, res.Pulls[9].Tier)
		for _, pr := range res.Pulls[:9] {
			if table.Rank(pr.Tier) < epicRank {
				belowFloorEarly++
			}
		}
	}
	assert.Greater(t, belowFloorEarly, 0, "pulls 1-9 must not be lifted by the guarantee")
}

func TestOpenPackSinglePullTakesGuarantee(t *testing.T) {
	table := mustTable(t, sixTiers())
	packs, _, _ := newPackRig(t, table, seq(0.0), &fakeWallet{balance: 10})

	res, err := packs.OpenPack(PackRequest{PullCount: 1, Cost: 10, GuaranteedMinimum: "legendary"})
	require.NoError(t, err)
	assert.Equal(t, TierID("legendary"), res.Pulls[0].Tier)
}

// Pity state carries between pulls of one call: legendary's counter reaches its
// threshold on the third pull without any resolve outside the pack.
func TestOpenPackIntraPackPity(t *testing.T) {
	table := mustTable(t, []Tier{
		{ID: "common", Probability: 0.9, PityThreshold: 1, DisplayName: "Common"},
		{ID: "legendary", Probability: 0.1, PityThreshold: 3, DisplayName: "Legendary"},
	})
	wallet := &fakeWallet{balance: 100}
	packs, pity, _ := newPackRig(t, table, seq(0.1), wallet)

	// one earlier miss in the session
	first, err := packs.OpenPack(PackRequest{PullCount: 1, Cost: 1})
	require.NoError(t, err)
	require.Equal(t, TierID("common"), first.Pulls[0].Tier)
	require.Equal(t, 1, pity.Count("legendary"))

	res, err := packs.OpenPack(PackRequest{PullCount: 3, Cost: 3})
	require.NoError(t, err)
	require.Len(t, res.Pulls, 3)
	assert.Equal(t, TierID("common"), res.Pulls[0].Tier)
	assert.Equal(t, TierID("common"), res.Pulls[1].Tier)
	assert.Equal(t, TierID("legendary"), res.Pulls[2].Tier)
	assert.True(t, res.Pulls[2].IsPity)
	assert.Equal(t, 0, pity.Count("legendary"))
}

func TestOpenPackLegendaryHitResetsWithinPack(t *testing.T) {
	table := mustTable(t, sixTiers())
	packs, pity, _ := newPackRig(t, table, seq(0.1, 0.1, 0.98, 0.1, 0.1), &fakeWallet{balance: 10})

	res, err := packs.OpenPack(PackRequest{PullCount: 5, Cost: 10})
	require.NoError(t, err)
	assert.Equal(t, TierID("legendary"), res.Pulls[2].Tier)
	assert.False(t, res.Pulls[2].IsPity)
	assert.Equal(t, 2, pity.Count("legendary"))
}

func TestOpenPackDeclinedHasNoSideEffects(t *testing.T) {
	table := mustTable(t, sixTiers())
	wallet := new(mockWallet)
	wallet.On("CanAfford", 100).Return(false)
	tierRNG := seq(0.5)
	packs, pity, ledger := newPackRig(t, table, tierRNG, wallet)
	pity.Restore(map[TierID]int{"rare": 4})
	before := pity.Snapshot()

	res, err := packs.OpenPack(PackRequest{PullCount: 10, Cost: 100, GuaranteedMinimum: "epic"})
	require.NoError(t, err)
	require.True(t, res.IsDeclined())
	assert.Equal(t, 100, res.Declined.Cost)
	assert.Contains(t, res.Declined.Reason, "insufficient funds")
	assert.Empty(t, res.Pulls)

	assert.Equal(t, before, pity.Snapshot())
	assert.Equal(t, 0, tierRNG.calls)
	assert.Equal(t, 0, ledger.Len())
	wallet.AssertNotCalled(t, "Debit", mock.Anything)
	wallet.AssertExpectations(t)
}

func TestOpenPackDebitRace(t *testing.T) {
	table := mustTable(t, sixTiers())

	wallet := new(mockWallet)
	wallet.On("CanAfford", 10).Return(true)
	wallet.On("Debit", 10).Return(ErrInsufficientFunds)
	packs, pity, _ := newPackRig(t, table, seq(0.5), wallet)

	res, err := packs.OpenPack(PackRequest{PullCount: 1, Cost: 10})
	require.NoError(t, err)
	assert.True(t, res.IsDeclined())
	assert.Equal(t, 0, pity.Count("common"))

	broken := new(mockWallet)
	broken.On("CanAfford", 10).Return(true)
	broken.On("Debit", 10).Return(errors.New("ledger offline"))
	packs, _, _ = newPackRig(t, table, seq(0.5), broken)

	_, err = packs.OpenPack(PackRequest{PullCount: 1, Cost: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger offline")
}

func TestOpenPackRejectsMalformedRequests(t *testing.T) {
	table := mustTable(t, sixTiers())
	wallet := new(mockWallet)
	packs, _, _ := newPackRig(t, table, seq(0.5), wallet)

	for _, req := range []PackRequest{
		{PullCount: 0, Cost: 10},
		{PullCount: 1, Cost: -1},
		{PullCount: 10, Cost: 10, GuaranteedMinimum: "shiny"},
	} {
		_, err := packs.OpenPack(req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}
	wallet.AssertNotCalled(t, "CanAfford", mock.Anything)
	wallet.AssertNotCalled(t, "Debit", mock.Anything)
}

func TestItemSelectorUniform(t *testing.T) {
	table := mustTable(t, sixTiers())
	cat := catalogFor(table)
	cat["common"] = []Item{
		{ID: "a", Tier: "common"}, {ID: "b", Tier: "common"},
		{ID: "c", Tier: "common"}, {ID: "d", Tier: "common"},
	}

	sel, err := NewItemSelector(table, cat, seq(0, 0.26, 0.99, 1.0))
	require.NoError(t, err)
	assert.Equal(t, "a", sel.Pick("common").ID)
	assert.Equal(t, "b", sel.Pick("common").ID)
	assert.Equal(t, "d", sel.Pick("common").ID)
	assert.Equal(t, "d", sel.Pick("common").ID) // out-of-range draw is clamped

	sel, err = NewItemSelector(table, cat, NewSeededRNG(5))
	require.NoError(t, err)
	counts := map[string]int{}
	const n = 40000
	for i := 0; i < n; i++ {
		counts[sel.Pick("common").ID]++
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.InDelta(t, 0.25, float64(counts[id])/n, 0.01, id)
	}
}

func TestItemSelectorRejectsEmptyPool(t *testing.T) {
	table := mustTable(t, sixTiers())
	cat := catalogFor(table)
	cat["epic"] = nil
	_, err := NewItemSelector(table, cat, nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestMarkNew(t *testing.T) {
	results := []PullResult{
		{Item: Item{ID: "sun"}}, {Item: Item{ID: "moon"}}, {Item: Item{ID: "sun"}}, {Item: Item{ID: "star"}},
	}
	owned := map[string]int{"moon": 2}
	MarkNew(results, func(id string) int { return owned[id] })

	assert.True(t, results[0].IsNew)
	assert.False(t, results[1].IsNew)
	assert.False(t, results[2].IsNew)
	assert.True(t, results[3].IsNew)
}
