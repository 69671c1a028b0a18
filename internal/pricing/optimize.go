package pricing

import "math"

const inf = math.MaxInt

// MinCostAtLeastTokens finds the cheapest combination granting at least
// targetTokens. Regular SKUs may be bought any number of times; a first-time
// doubled purchase at most once per SKU.
func MinCostAtLeastTokens(c Catalog, targetTokens int, first FirstTimeState) Plan {
	vs := c.variants(first)
	if targetTokens <= 0 || len(vs) == 0 {
		return Plan{Currency: c.Currency}
	}

	// Overshooting by more than the largest bundle is never cheaper.
	maxTok := 0
	for _, v := range vs {
		maxTok = max(maxTok, v.tokens)
	}
	limit := targetTokens + maxTok

	// best[t] is the cheapest way to hold exactly t tokens (t capped at limit).
	type state struct {
		cost   int
		counts map[variant]int
	}
	best := make([]state, limit+1)
	for t := range best {
		best[t].cost = inf
	}
	best[0] = state{cost: 0, counts: map[variant]int{}}

	for t := 0; t <= limit; t++ {
		if best[t].cost == inf {
			continue
		}
		for _, v := range vs {
			if v.once && best[t].counts[v] > 0 {
				continue
			}
			nt := min(t+v.tokens, limit)
			cost := best[t].cost + v.price
			if cost < best[nt].cost {
				counts := make(map[variant]int, len(best[t].counts)+1)
				for k, n := range best[t].counts {
					counts[k] = n
				}
				counts[v]++
				best[nt] = state{cost: cost, counts: counts}
			}
		}
	}

	bestT := -1
	for t := targetTokens; t <= limit; t++ {
		if best[t].cost != inf && (bestT < 0 || best[t].cost < best[bestT].cost) {
			bestT = t
		}
	}
	if bestT < 0 {
		return Plan{Currency: c.Currency}
	}
	return buildPlan(c, best[bestT].counts)
}

// MaxTokensUnderBudget finds the combination granting the most tokens whose
// total, tax included, fits in budgetCents.
func MaxTokensUnderBudget(c Catalog, budgetCents int, first FirstTimeState) Plan {
	vs := c.variants(first)
	if budgetCents <= 0 || len(vs) == 0 {
		return Plan{Currency: c.Currency}
	}

	// Largest pre-tax subtotal whose taxed total still fits.
	sub := budgetCents
	if c.TaxRate > 0 {
		sub = int(math.Floor(float64(budgetCents) / (1 + c.TaxRate)))
		for sub > 0 {
			if _, total := applyTax(sub, c.TaxRate); total <= budgetCents {
				break
			}
			sub--
		}
	}

	type state struct {
		tokens int
		counts map[variant]int
	}
	best := make([]state, sub+1)
	best[0].counts = map[variant]int{}
	reached := make([]bool, sub+1)
	reached[0] = true

	for spent := 0; spent <= sub; spent++ {
		if !reached[spent] {
			continue
		}
		for _, v := range vs {
			if v.once && best[spent].counts[v] > 0 {
				continue
			}
			next := spent + v.price
			if next > sub {
				continue
			}
			tokens := best[spent].tokens + v.tokens
			if !reached[next] || tokens > best[next].tokens {
				counts := make(map[variant]int, len(best[spent].counts)+1)
				for k, n := range best[spent].counts {
					counts[k] = n
				}
				counts[v]++
				best[next] = state{tokens: tokens, counts: counts}
				reached[next] = true
			}
		}
	}

	bestSpent := 0
	for spent := 0; spent <= sub; spent++ {
		if reached[spent] && best[spent].tokens > best[bestSpent].tokens {
			bestSpent = spent
		}
	}
	return buildPlan(c, best[bestSpent].counts)
}
