package gacha

import (
	"fmt"
	"math"
)

// ProbabilitySumEpsilon is how far the tier probabilities may drift from 1.0.
const ProbabilitySumEpsilon = 1e-6

// TierID names a rarity tier, e.g. "common".
type TierID string

// Tier is one rarity class. Probability is the base chance of the tier on an
// unconstrained draw; PityThreshold is the number of consecutive misses after
// which the tier is forced.
type Tier struct {
	ID            TierID  `json:"id" yaml:"id"`
	Probability   float64 `json:"probability" yaml:"probability"`
	PityThreshold int     `json:"pity_threshold" yaml:"pity"`
	DisplayName   string  `json:"display_name" yaml:"name"`
}

// RarityTable is the validated, immutable tier configuration.
// Tiers are stored most-common first.
type RarityTable struct {
	tiers []Tier
	index map[TierID]int
}

// NewRarityTable validates tiers (ordered common -> rare) and builds a table.
// Every problem is reported at once in a *ConfigError.
func NewRarityTable(tiers []Tier) (*RarityTable, error) {
	var problems []string
	if len(tiers) == 0 {
		return nil, configErr([]string{"at least one tier is required"})
	}

	index := make(map[TierID]int, len(tiers))
	sum := 0.0
	for i, t := range tiers {
		if t.ID == "" {
			problems = append(problems, fmt.Sprintf("tiers[%d].id must not be empty", i))
		} else if _, dup := index[t.ID]; dup {
			problems = append(problems, fmt.Sprintf("tiers[%d].id %q is duplicated", i, t.ID))
		} else {
			index[t.ID] = i
		}
		if err := validateProb(t.Probability); err != nil {
			problems = append(problems, fmt.Sprintf("tiers[%d] %q: %v", i, t.ID, err))
		} else {
			sum += t.Probability
		}
		if t.PityThreshold < 1 {
			problems = append(problems, fmt.Sprintf("tiers[%d] %q: pity threshold must be >= 1", i, t.ID))
		}
		if i > 0 && t.PityThreshold <= tiers[i-1].PityThreshold {
			problems = append(problems, fmt.Sprintf("tiers[%d] %q: pity threshold %d must be greater than %q's %d",
				i, t.ID, t.PityThreshold, tiers[i-1].ID, tiers[i-1].PityThreshold))
		}
	}
	if len(problems) == 0 && math.Abs(sum-1) > ProbabilitySumEpsilon {
		problems = append(problems, fmt.Sprintf("tier probabilities sum to %.9f, want 1", sum))
	}
	if err := configErr(problems); err != nil {
		return nil, err
	}

	return &RarityTable{
		tiers: append([]Tier(nil), tiers...),
		index: index,
	}, nil
}

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p <= 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

// Len returns the number of tiers.
func (t *RarityTable) Len() int { return len(t.tiers) }

// Tiers returns the tiers ordered common -> rare.
func (t *RarityTable) Tiers() []Tier {
	return append([]Tier(nil), t.tiers...)
}

// RarestFirst returns the tiers ordered rare -> common.
func (t *RarityTable) RarestFirst() []Tier {
	out := make([]Tier, len(t.tiers))
	for i, tier := range t.tiers {
		out[len(t.tiers)-1-i] = tier
	}
	return out
}

// Tier looks a tier up by id.
func (t *RarityTable) Tier(id TierID) (Tier, bool) {
	i, ok := t.index[id]
	if !ok {
		return Tier{}, false
	}
	return t.tiers[i], true
}

// Rank is the tier's position, 0 being the most common. Unknown ids return -1.
func (t *RarityTable) Rank(id TierID) int {
	i, ok := t.index[id]
	if !ok {
		return -1
	}
	return i
}

// AtLeast returns the tiers at or above the rarity of id, common -> rare.
func (t *RarityTable) AtLeast(id TierID) ([]Tier, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.tiers[i:], true
}

// Rarest returns the rarest tier of the table.
func (t *RarityTable) Rarest() Tier { return t.tiers[len(t.tiers)-1] }

// ValidateCatalog checks that every tier has at least one item and
// that every item in a pool is tagged with that pool's tier.
func (t *RarityTable) ValidateCatalog(c Catalog) error {
	if c == nil {
		return configErr([]string{"catalog is required"})
	}
	var problems []string
	for _, tier := range t.tiers {
		items := c.ItemsForTier(tier.ID)
		if len(items) == 0 {
			problems = append(problems, fmt.Sprintf("tier %q has an empty item pool", tier.ID))
			continue
		}
		for _, it := range items {
			if it.Tier != tier.ID {
				problems = append(problems, fmt.Sprintf("item %q is tagged %q but listed under %q", it.ID, it.Tier, tier.ID))
			}
		}
	}
	return configErr(problems)
}
