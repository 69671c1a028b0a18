package game

import (
	"errors"
	"fmt"

	"github.com/xtding233/sticker-gacha/internal/gacha"
	"github.com/xtding233/sticker-gacha/internal/pricing"
	"github.com/xtding233/sticker-gacha/internal/token"
)

// ErrUnknownPack is returned when a pack id is not part of the game.
var ErrUnknownPack = errors.New("unknown pack")

// Pack is a purchasable pack with its resolved cost.
type Pack struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Pulls             int          `json:"pulls"`
	Cost              int          `json:"cost"`
	GuaranteedMinimum gacha.TierID `json:"guaranteed_minimum,omitempty"`
}

// Request turns the pack into an engine request.
func (p Pack) Request() gacha.PackRequest {
	return gacha.PackRequest{PullCount: p.Pulls, Cost: p.Cost, GuaranteedMinimum: p.GuaranteedMinimum}
}

// Game is a validated, immutable game definition shared by every session
// created while it is current.
type Game struct {
	Version        string
	Table          *gacha.RarityTable
	Catalog        gacha.StaticCatalog
	Token          token.Token
	LedgerCapacity int
	Shop           *pricing.Catalog // nil when the game sells no bundles

	packs []Pack
	index map[string]int
}

// Packs returns the packs in configured order.
func (g *Game) Packs() []Pack { return append([]Pack(nil), g.packs...) }

// Pack looks a pack up by id.
func (g *Game) Pack(id string) (Pack, bool) {
	i, ok := g.index[id]
	if !ok {
		return Pack{}, false
	}
	return g.packs[i], true
}

// Build validates a merged RawConfig and normalizes it into a Game.
func Build(raw RawConfig) (*Game, error) {
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}

	tiers := make([]gacha.Tier, 0, len(raw.Tiers))
	for _, t := range raw.Tiers {
		tiers = append(tiers, gacha.Tier{
			ID:            gacha.TierID(t.ID),
			Probability:   t.Probability,
			PityThreshold: t.Pity,
			DisplayName:   t.Name,
		})
	}
	table, err := gacha.NewRarityTable(tiers)
	if err != nil {
		return nil, fmt.Errorf("tiers: %w", err)
	}

	items := make([]gacha.Item, 0, len(raw.Items))
	for _, it := range raw.Items {
		name := it.Name
		if name == "" {
			name = it.ID
		}
		items = append(items, gacha.Item{ID: it.ID, Name: name, Tier: gacha.TierID(it.Tier)})
	}
	catalog := gacha.NewStaticCatalog(items)
	if err := table.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}

	var tok token.Token
	if raw.Tokens != nil {
		tok.Name = raw.Tokens.Name
		if raw.Tokens.PerDraw != nil {
			tok.PerDraw = *raw.Tokens.PerDraw
		}
		if raw.Tokens.PerTenDraw != nil {
			tok.PerTenDraw = *raw.Tokens.PerTenDraw
		}
	}

	g := &Game{
		Version:        raw.Version,
		Table:          table,
		Catalog:        catalog,
		Token:          tok,
		LedgerCapacity: gacha.DefaultLedgerCapacity,
		index:          make(map[string]int, len(raw.Packs)),
	}
	if raw.Ledger != nil && raw.Ledger.Capacity > 0 {
		g.LedgerCapacity = raw.Ledger.Capacity
	}
	if raw.Shop != nil {
		shop := &pricing.Catalog{Currency: raw.Shop.Currency, TaxRate: raw.Shop.TaxRate}
		for _, sku := range raw.Shop.SKUs {
			name := sku.Name
			if name == "" {
				name = sku.ID
			}
			shop.SKUs = append(shop.SKUs, pricing.SKU{
				ID:          sku.ID,
				Name:        name,
				Tokens:      sku.Tokens,
				BonusTokens: sku.BonusTokens,
				FirstTimeX2: sku.FirstTimeX2,
				PriceCents:  sku.PriceCents,
			})
		}
		g.Shop = shop
	}
	for _, p := range raw.Packs {
		cost := tok.TokensForDraws(p.Pulls)
		if p.Cost != nil {
			cost = *p.Cost
		}
		name := p.Name
		if name == "" {
			name = p.ID
		}
		g.index[p.ID] = len(g.packs)
		g.packs = append(g.packs, Pack{
			ID:                p.ID,
			Name:              name,
			Pulls:             p.Pulls,
			Cost:              cost,
			GuaranteedMinimum: gacha.TierID(p.GuaranteedMinimum),
		})
	}
	return g, nil
}
