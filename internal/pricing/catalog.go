package pricing

import (
	"math"
	"sort"
)

// SKU models a purchasable currency bundle in the store.
type SKU struct {
	ID          string `json:"id"`           // e.g. "coins-980"
	Name        string `json:"name"`         // e.g. "980 Coins"
	Tokens      int    `json:"tokens"`       // base tokens granted
	BonusTokens int    `json:"bonus_tokens"` // permanent extra tokens, never doubled
	FirstTimeX2 bool   `json:"first_time_x2"`
	PriceCents  int    `json:"price_cents"` // price in minor units
}

// Catalog is a regional store catalog.
type Catalog struct {
	Currency string  `json:"currency"` // ISO code, e.g. "USD"
	TaxRate  float64 `json:"tax_rate"` // applied on the subtotal; 0 for tax-inclusive prices
	SKUs     []SKU   `json:"skus"`
}

// FirstTimeState marks SKUs whose first-purchase bonus is still available.
type FirstTimeState map[string]bool

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases   []Purchase `json:"purchases"`
	SubCents    int        `json:"sub_cents"`
	TaxCents    int        `json:"tax_cents"`
	TotalCents  int        `json:"total_cents"`
	TotalTokens int        `json:"total_tokens"`
	Currency    string     `json:"currency"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	UnitPrice  int    `json:"unit_price"`  // cents
	UnitTokens int    `json:"unit_tokens"` // with x2/bonus applied
	Subtotal   int    `json:"subtotal"`
}

// variant is one way to buy a SKU: the first-time doubled purchase or the regular one.
type variant struct {
	sku    string
	name   string
	tokens int
	price  int
	once   bool // first-time variant, at most one unit
}

func (c Catalog) variants(first FirstTimeState) []variant {
	var out []variant
	for _, s := range c.SKUs {
		if s.PriceCents <= 0 || s.Tokens+s.BonusTokens <= 0 {
			continue
		}
		if s.FirstTimeX2 && first[s.ID] {
			out = append(out, variant{
				sku:    s.ID,
				name:   s.Name + " (x2)",
				tokens: s.Tokens*2 + s.BonusTokens,
				price:  s.PriceCents,
				once:   true,
			})
		}
		out = append(out, variant{sku: s.ID, name: s.Name, tokens: s.Tokens + s.BonusTokens, price: s.PriceCents})
	}
	return out
}

// applyTax computes tax and total given a subtotal and a tax rate.
func applyTax(sub int, taxRate float64) (tax int, total int) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int(math.Round(float64(sub) * taxRate))
	return t, sub + t
}

func buildPlan(c Catalog, counts map[variant]int) Plan {
	plan := Plan{Currency: c.Currency}
	for v, qty := range counts {
		sub := v.price * qty
		plan.Purchases = append(plan.Purchases, Purchase{
			SKU:        v.sku,
			Name:       v.name,
			Qty:        qty,
			UnitPrice:  v.price,
			UnitTokens: v.tokens,
			Subtotal:   sub,
		})
		plan.SubCents += sub
		plan.TotalTokens += v.tokens * qty
	}
	sort.Slice(plan.Purchases, func(i, j int) bool {
		a, b := plan.Purchases[i], plan.Purchases[j]
		if a.UnitPrice != b.UnitPrice {
			return a.UnitPrice > b.UnitPrice
		}
		return a.Name < b.Name
	})
	plan.TaxCents, plan.TotalCents = applyTax(plan.SubCents, c.TaxRate)
	return plan
}
