package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRaw checks a merged RawConfig: field constraints from struct tags,
// then cross references between tiers, items and packs. Probability sums and
// pity ordering are left to gacha.NewRarityTable.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config validation failed: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Sprintf("%s failed %q", strings.TrimPrefix(fe.Namespace(), "RawConfig."), fe.Tag()))
		}
	}

	if len(cfg.Tiers) == 0 {
		errs = append(errs, "tiers: at least one tier is required")
	}
	tiers := make(map[string]bool, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tiers[t.ID] = true
	}

	items := make(map[string]bool, len(cfg.Items))
	for i, it := range cfg.Items {
		if items[it.ID] {
			errs = append(errs, fmt.Sprintf("items[%d].id %q is duplicated", i, it.ID))
		}
		items[it.ID] = true
		if it.Tier != "" && !tiers[it.Tier] {
			errs = append(errs, fmt.Sprintf("items[%d] %q references unknown tier %q", i, it.ID, it.Tier))
		}
	}

	if len(cfg.Packs) == 0 {
		errs = append(errs, "packs: at least one pack is required")
	}
	packs := make(map[string]bool, len(cfg.Packs))
	for i, p := range cfg.Packs {
		if packs[p.ID] {
			errs = append(errs, fmt.Sprintf("packs[%d].id %q is duplicated", i, p.ID))
		}
		packs[p.ID] = true
		if p.GuaranteedMinimum != "" && !tiers[p.GuaranteedMinimum] {
			errs = append(errs, fmt.Sprintf("packs[%d] %q guarantees unknown tier %q", i, p.ID, p.GuaranteedMinimum))
		}
		if p.Cost == nil && (cfg.Tokens == nil || cfg.Tokens.PerDraw == nil) {
			errs = append(errs, fmt.Sprintf("packs[%d] %q has no cost and tokens.per_draw is not set", i, p.ID))
		}
	}

	if cfg.Shop != nil {
		skus := make(map[string]bool, len(cfg.Shop.SKUs))
		for i, sku := range cfg.Shop.SKUs {
			if skus[sku.ID] {
				errs = append(errs, fmt.Sprintf("shop.skus[%d].id %q is duplicated", i, sku.ID))
			}
			skus[sku.ID] = true
			if sku.Tokens+sku.BonusTokens == 0 {
				errs = append(errs, fmt.Sprintf("shop.skus[%d] %q grants no tokens", i, sku.ID))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
