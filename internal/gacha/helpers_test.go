package gacha

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// sixTiers is the reference table: common..mythic.
func sixTiers() []Tier {
	return []Tier{
		{ID: "common", Probability: 0.50, PityThreshold: 2, DisplayName: "Common"},
		{ID: "uncommon", Probability: 0.30, PityThreshold: 5, DisplayName: "Uncommon"},
		{ID: "rare", Probability: 0.12, PityThreshold: 10, DisplayName: "Rare"},
		{ID: "epic", Probability: 0.05, PityThreshold: 25, DisplayName: "Epic"},
		{ID: "legendary", Probability: 0.02, PityThreshold: 50, DisplayName: "Legendary"},
		{ID: "mythic", Probability: 0.01, PityThreshold: 100, DisplayName: "Mythic"},
	}
}

func mustTable(t *testing.T, tiers []Tier) *RarityTable {
	t.Helper()
	table, err := NewRarityTable(tiers)
	require.NoError(t, err)
	return table
}

// catalogFor gives every tier two items named "<tier>-1", "<tier>-2".
func catalogFor(table *RarityTable) StaticCatalog {
	var items []Item
	for _, tier := range table.Tiers() {
		for _, n := range []string{"1", "2"} {
			items = append(items, Item{ID: string(tier.ID) + "-" + n, Name: tier.DisplayName + " " + n, Tier: tier.ID})
		}
	}
	return NewStaticCatalog(items)
}

// scripted returns the given draws in order, repeating the last one when exhausted.
type scripted struct {
	draws []float64
	calls int
}

func seq(draws ...float64) *scripted { return &scripted{draws: draws} }

func (s *scripted) Float64() float64 {
	i := s.calls
	s.calls++
	if i >= len(s.draws) {
		return s.draws[len(s.draws)-1]
	}
	return s.draws[i]
}

type fakeWallet struct {
	balance int
	debited int
}

func (w *fakeWallet) CanAfford(cost int) bool { return w.balance >= cost }

func (w *fakeWallet) Debit(cost int) error {
	if cost > w.balance {
		return ErrInsufficientFunds
	}
	w.balance -= cost
	w.debited += cost
	return nil
}

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) CanAfford(cost int) bool {
	args := m.Called(cost)
	return args.Bool(0)
}

func (m *mockWallet) Debit(cost int) error {
	args := m.Called(cost)
	return args.Error(0)
}

// newPackRig wires a pack resolver with separate random sources for tiers and items.
func newPackRig(t *testing.T, table *RarityTable, tierRNG RandomSource, wallet Wallet) (*PackResolver, *PityTracker, *PullLedger) {
	t.Helper()
	items, err := NewItemSelector(table, catalogFor(table), NewSeededRNG(7))
	require.NoError(t, err)
	pity := NewPityTracker(table)
	ledger := NewPullLedger(50)
	return NewPackResolver(table, NewDropResolver(table, pity, tierRNG), items, wallet, ledger), pity, ledger
}
