package gacha

import "fmt"

// Wallet is the external currency balance. The engine never owns the balance.
type Wallet interface {
	CanAfford(cost int) bool
	Debit(cost int) error
}

// PackRequest describes one purchasable pack.
type PackRequest struct {
	PullCount         int
	Cost              int
	GuaranteedMinimum TierID // applies to the final pull only; empty for none
}

// PullResult is one resolved pull.
type PullResult struct {
	Item     Item   `json:"item"`
	Tier     TierID `json:"tier"`
	IsNew    bool   `json:"is_new"`
	IsPity   bool   `json:"is_pity"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Declined means the pack was not opened and nothing changed.
type Declined struct {
	Reason string `json:"reason"`
	Cost   int    `json:"cost"`
}

// PackResult holds either the ordered pulls of an opened pack or a decline.
type PackResult struct {
	Pulls    []PullResult `json:"pulls,omitempty"`
	Declined *Declined    `json:"declined,omitempty"`
}

func (r PackResult) IsDeclined() bool { return r.Declined != nil }

// PackResolver sequences the pulls of a pack.
type PackResolver struct {
	table  *RarityTable
	drops  *DropResolver
	items  *ItemSelector
	wallet Wallet
	ledger *PullLedger // optional
	owned  func(itemID string) int
}

func NewPackResolver(table *RarityTable, drops *DropResolver, items *ItemSelector, wallet Wallet, ledger *PullLedger) *PackResolver {
	return &PackResolver{table: table, drops: drops, items: items, wallet: wallet, ledger: ledger}
}

// SetOwnership makes OpenPack mark IsNew from the caller's collection before
// pulls reach the ledger. nil leaves IsNew false.
func (p *PackResolver) SetOwnership(owned func(itemID string) int) { p.owned = owned }

// OpenPack checks affordability, debits, then resolves PullCount pulls in order.
// Each pull sees the pity state left by the previous one. A malformed request
// returns ErrInvalidRequest before the wallet is touched.
func (p *PackResolver) OpenPack(req PackRequest) (PackResult, error) {
	if err := p.validate(req); err != nil {
		return PackResult{}, err
	}

	if !p.wallet.CanAfford(req.Cost) {
		return PackResult{Declined: &Declined{Reason: ErrInsufficientFunds.Error(), Cost: req.Cost}}, nil
	}
	if err := p.wallet.Debit(req.Cost); err != nil {
		if isInsufficientFunds(err) {
			return PackResult{Declined: &Declined{Reason: err.Error(), Cost: req.Cost}}, nil
		}
		return PackResult{}, fmt.Errorf("debit %d: %w", req.Cost, err)
	}

	pulls := make([]PullResult, 0, req.PullCount)
	for i := 0; i < req.PullCount; i++ {
		var floor TierID
		if i == req.PullCount-1 {
			floor = req.GuaranteedMinimum
		}
		res := p.drops.Resolve(floor)
		pr := PullResult{
			Item:     p.items.Pick(res.Tier.ID),
			Tier:     res.Tier.ID,
			IsPity:   res.IsPity,
			Fallback: res.Fallback,
		}
		pulls = append(pulls, pr)
	}
	if p.owned != nil {
		MarkNew(pulls, p.owned)
	}
	if p.ledger != nil {
		for _, pr := range pulls {
			p.ledger.Record(pr)
		}
	}
	return PackResult{Pulls: pulls}, nil
}

func (p *PackResolver) validate(req PackRequest) error {
	if req.PullCount < 1 {
		return fmt.Errorf("%w: pull count must be >= 1, got %d", ErrInvalidRequest, req.PullCount)
	}
	if req.Cost < 0 {
		return fmt.Errorf("%w: cost must be >= 0, got %d", ErrInvalidRequest, req.Cost)
	}
	if req.GuaranteedMinimum != "" {
		if _, ok := p.table.Tier(req.GuaranteedMinimum); !ok {
			return fmt.Errorf("%w: unknown guaranteed tier %q", ErrInvalidRequest, req.GuaranteedMinimum)
		}
	}
	return nil
}
