package gacha

// walkTiers draws over tiers ordered common -> rare using weights that should sum to 1.
// It returns the first tier whose cumulative weight exceeds r.
//
// If rounding leaves r unmatched, the rarest tier of the walked set is returned and
// fallback is true. This is a fixed policy, never an accident of summation order.
func walkTiers(tiers []Tier, weights []float64, r float64) (tier Tier, fallback bool) {
	cum := 0.0
	for i, t := range tiers {
		cum += weights[i]
		if cum > r {
			return t, false
		}
	}
	return tiers[len(tiers)-1], true
}

// baseWeights returns the tiers' base probabilities.
func baseWeights(tiers []Tier) []float64 {
	w := make([]float64, len(tiers))
	for i, t := range tiers {
		w[i] = t.Probability
	}
	return w
}

// renormalized divides each probability by the sum of the set, keeping their proportions.
func renormalized(tiers []Tier) []float64 {
	w := baseWeights(tiers)
	sum := 0.0
	for _, p := range w {
		sum += p
	}
	if sum <= 0 {
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
