package gacha

import (
	"fmt"
	"math"
	"sort"
)

// SimParams describes one simulation run over a rarity table.
type SimParams struct {
	Table *RarityTable
	Pulls int // total pulls to resolve

	// Optional pack shape: every PackSize-th pull gets Floor as its guaranteed minimum.
	PackSize int
	Floor    TierID

	Seed uint64         // used when RNG is nil
	RNG  RandomSource   // optional
	Pity map[TierID]int // optional starting counters
}

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// TierReport is the simulated behaviour of one tier.
type TierReport struct {
	TierID     TierID
	Configured float64 // base probability
	Hits       int
	Frequency  float64 // Hits / Pulls
	PityHits   int
	Gap        Stats // pulls between consecutive hits (first gap counted from the start)
}

// SimResult is the outcome of Simulate, tiers ordered common -> rare.
type SimResult struct {
	Pulls     int
	Fallbacks int
	Tiers     []TierReport
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// Simulate resolves p.Pulls pulls with a fresh tracker and reports per-tier frequencies,
// pity hits and the distribution of gaps between hits.
func Simulate(p SimParams) (SimResult, error) {
	if p.Table == nil {
		return SimResult{}, fmt.Errorf("%w: simulation needs a rarity table", ErrInvalidRequest)
	}
	if p.Pulls <= 0 {
		return SimResult{Tiers: emptyReports(p.Table)}, nil
	}
	if p.Floor != "" {
		if _, ok := p.Table.Tier(p.Floor); !ok {
			return SimResult{}, fmt.Errorf("%w: unknown floor tier %q", ErrInvalidRequest, p.Floor)
		}
	}
	rng := p.RNG
	if rng == nil {
		rng = NewSeededRNG(p.Seed)
	}

	pity := NewPityTracker(p.Table)
	if p.Pity != nil {
		pity.Restore(p.Pity)
	}
	drops := NewDropResolver(p.Table, pity, rng)

	hits := make(map[TierID]int, p.Table.Len())
	pityHits := make(map[TierID]int, p.Table.Len())
	gaps := make(map[TierID][]int, p.Table.Len())
	last := make(map[TierID]int, p.Table.Len())
	fallbacks := 0

	for i := 1; i <= p.Pulls; i++ {
		var floor TierID
		if p.PackSize > 0 && i%p.PackSize == 0 {
			floor = p.Floor
		}
		res := drops.Resolve(floor)
		id := res.Tier.ID
		hits[id]++
		if res.IsPity {
			pityHits[id]++
		}
		if res.Fallback {
			fallbacks++
		}
		gaps[id] = append(gaps[id], i-last[id])
		last[id] = i
	}

	out := SimResult{Pulls: p.Pulls, Fallbacks: fallbacks}
	for _, t := range p.Table.tiers {
		out.Tiers = append(out.Tiers, TierReport{
			TierID:     t.ID,
			Configured: t.Probability,
			Hits:       hits[t.ID],
			Frequency:  float64(hits[t.ID]) / float64(p.Pulls),
			PityHits:   pityHits[t.ID],
			Gap:        calcStats(gaps[t.ID]),
		})
	}
	return out, nil
}

func emptyReports(t *RarityTable) []TierReport {
	out := make([]TierReport, 0, t.Len())
	for _, tier := range t.tiers {
		out = append(out, TierReport{TierID: tier.ID, Configured: tier.Probability})
	}
	return out
}
