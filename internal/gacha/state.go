package gacha

import "errors"

// SessionState is the persisted shape of one session: a flat tier -> count map and
// the bounded ledger, newest first. Unknown tier ids in Pity load as nothing.
type SessionState struct {
	Pity   map[TierID]int `json:"pity" yaml:"pity"`
	Ledger []PullResult   `json:"ledger" yaml:"ledger"`
}

// MarkNew sets IsNew on results whose item had no prior owned quantity.
// A duplicate later in the same slice is not new.
func MarkNew(results []PullResult, owned func(itemID string) int) {
	seen := make(map[string]bool, len(results))
	for i := range results {
		id := results[i].Item.ID
		results[i].IsNew = !seen[id] && (owned == nil || owned(id) == 0)
		seen[id] = true
	}
}

func isInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}
