package gacha

// Resolution is the outcome of one pull's tier resolution.
type Resolution struct {
	Tier     Tier
	IsPity   bool // chosen because its pity threshold was met
	Fallback bool // weighted walk matched nothing and fell back to the rarest candidate
}

// DropResolver resolves exactly one tier per pull and keeps the pity tracker in step.
type DropResolver struct {
	table *RarityTable
	pity  *PityTracker
	rng   RandomSource
}

// NewDropResolver wires a resolver to a table, its session's tracker and a random source.
func NewDropResolver(table *RarityTable, pity *PityTracker, rng RandomSource) *DropResolver {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &DropResolver{table: table, pity: pity, rng: rng}
}

// Resolve picks the tier of one pull.
//   - pity scan, rarest first: the rarest triggered tier wins
//   - with a guaranteed minimum: weighted draw over tiers at or above it, renormalized
//   - otherwise: weighted draw over all tiers
//
// An empty or unknown guaranteedMinimum means no floor. The tracker is updated before
// returning.
func (d *DropResolver) Resolve(guaranteedMinimum TierID) Resolution {
	res := d.resolve(guaranteedMinimum)
	d.pity.RecordPull(res.Tier.ID)
	return res
}

func (d *DropResolver) resolve(floor TierID) Resolution {
	candidates := d.table.tiers
	guaranteed := false
	if floor != "" {
		if eligible, ok := d.table.AtLeast(floor); ok {
			candidates = eligible
			guaranteed = true
		}
	}

	// Under a floor only eligible tiers can fire; a pending lower-tier pity carries to the next pull.
	for i := len(candidates) - 1; i >= 0; i-- {
		if d.pity.IsTriggered(candidates[i]) {
			return Resolution{Tier: candidates[i], IsPity: true}
		}
	}

	var weights []float64
	if guaranteed {
		weights = renormalized(candidates)
	} else {
		weights = baseWeights(candidates)
	}
	tier, fallback := walkTiers(candidates, weights, clampUnit(d.rng.Float64()))
	return Resolution{Tier: tier, Fallback: fallback}
}
