// types.go
package game

// RawConfig is one YAML layer as read from disk. Layers are merged
// default -> game -> event before validation.
type RawConfig struct {
	Version string        `yaml:"version"`
	Tiers   []TierConfig  `yaml:"tiers,omitempty" validate:"omitempty,dive"`
	Items   []ItemConfig  `yaml:"items,omitempty" validate:"omitempty,dive"`
	Packs   []PackConfig  `yaml:"packs,omitempty" validate:"omitempty,dive"`
	Tokens  *TokenConfig  `yaml:"tokens,omitempty"`
	Ledger  *LedgerConfig `yaml:"ledger,omitempty"`
	Shop    *ShopConfig   `yaml:"shop,omitempty"`
	Notes   string        `yaml:"notes,omitempty"`
}

type TierConfig struct {
	ID          string  `yaml:"id" validate:"required"`
	Name        string  `yaml:"name"`
	Probability float64 `yaml:"probability" validate:"gt=0,lte=1"`
	Pity        int     `yaml:"pity" validate:"gte=1"`
}

type ItemConfig struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name"`
	Tier string `yaml:"tier" validate:"required"`
}

type PackConfig struct {
	ID                string `yaml:"id" validate:"required"`
	Name              string `yaml:"name"`
	Pulls             int    `yaml:"pulls" validate:"gte=1,lte=100"`
	Cost              *int   `yaml:"cost,omitempty" validate:"omitempty,gte=0"` // nil -> priced from tokens
	GuaranteedMinimum string `yaml:"guaranteed_minimum,omitempty"`
}

type TokenConfig struct {
	Name       string `yaml:"name"`
	PerDraw    *int   `yaml:"per_draw" validate:"omitempty,gte=0"`
	PerTenDraw *int   `yaml:"per_ten_draw" validate:"omitempty,gte=0"`
}

type LedgerConfig struct {
	Capacity int `yaml:"capacity" validate:"gte=0"`
}

// ShopConfig lists the currency bundles players can buy.
type ShopConfig struct {
	Currency string      `yaml:"currency" validate:"omitempty,len=3"`
	TaxRate  float64     `yaml:"tax_rate" validate:"gte=0,lt=1"`
	SKUs     []SKUConfig `yaml:"skus" validate:"dive"`
}

type SKUConfig struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name"`
	Tokens      int    `yaml:"tokens" validate:"gte=0"`
	BonusTokens int    `yaml:"bonus_tokens" validate:"gte=0"`
	FirstTimeX2 bool   `yaml:"first_time_x2"`
	PriceCents  int    `yaml:"price_cents" validate:"gte=1"`
}
