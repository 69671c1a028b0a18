package gacha

// Item is a collectible that belongs to exactly one tier.
type Item struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Tier TierID `json:"tier" yaml:"tier"`
}

// Catalog lists the items of each tier. It is owned outside the engine.
type Catalog interface {
	ItemsForTier(tier TierID) []Item
}

// StaticCatalog is an in-memory Catalog keyed by tier.
type StaticCatalog map[TierID][]Item

// NewStaticCatalog groups items by their tier, keeping input order.
func NewStaticCatalog(items []Item) StaticCatalog {
	c := make(StaticCatalog)
	for _, it := range items {
		c[it.Tier] = append(c[it.Tier], it)
	}
	return c
}

func (c StaticCatalog) ItemsForTier(tier TierID) []Item { return c[tier] }

// ItemSelector draws a concrete item uniformly from a tier's pool.
type ItemSelector struct {
	pools map[TierID][]Item
	rng   RandomSource
}

// NewItemSelector snapshots the catalog pools. Empty pools for reachable tiers are a
// *ConfigError here, never at pick time.
func NewItemSelector(table *RarityTable, catalog Catalog, rng RandomSource) (*ItemSelector, error) {
	if err := table.ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	pools := make(map[TierID][]Item, table.Len())
	for _, t := range table.tiers {
		pools[t.ID] = append([]Item(nil), catalog.ItemsForTier(t.ID)...)
	}
	return &ItemSelector{pools: pools, rng: rng}, nil
}

// Pick returns one item of the tier, each with equal chance.
func (s *ItemSelector) Pick(tier TierID) Item {
	pool := s.pools[tier]
	if len(pool) == 0 {
		return Item{Tier: tier}
	}
	i := int(clampUnit(s.rng.Float64()) * float64(len(pool)))
	if i >= len(pool) {
		i = len(pool) - 1
	}
	return pool[i]
}
