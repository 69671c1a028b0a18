package gacha

import "math"

// PityTracker counts, per tier, the pulls since that tier was last produced.
// One tracker belongs to exactly one session; it is not safe for concurrent use.
type PityTracker struct {
	table  *RarityTable
	counts map[TierID]int
}

// PityStatus is the progress of one tier toward its pity guarantee.
type PityStatus struct {
	TierID         TierID  `json:"tier_id"`
	DisplayName    string  `json:"display_name"`
	PullsSinceLast int     `json:"pulls_since_last"`
	Threshold      int     `json:"threshold"`
	Percentage     float64 `json:"percentage"` // 0..100
}

// NewPityTracker creates a tracker with every counter at 0.
func NewPityTracker(table *RarityTable) *PityTracker {
	counts := make(map[TierID]int, table.Len())
	for _, t := range table.tiers {
		counts[t.ID] = 0
	}
	return &PityTracker{table: table, counts: counts}
}

// IsTriggered reports whether the tier has missed at least PityThreshold pulls in a row.
func (p *PityTracker) IsTriggered(t Tier) bool {
	return p.counts[t.ID] >= t.PityThreshold
}

// RecordPull resets the resolved tier and adds one miss to every other tier.
// It is the only way counters move.
func (p *PityTracker) RecordPull(resolved TierID) {
	for _, t := range p.table.tiers {
		if t.ID == resolved {
			p.counts[t.ID] = 0
			continue
		}
		p.counts[t.ID]++
	}
}

// Count returns the pulls since the tier was last produced.
func (p *PityTracker) Count(id TierID) int { return p.counts[id] }

// Status lists pity progress common -> rare.
func (p *PityTracker) Status() []PityStatus {
	out := make([]PityStatus, 0, len(p.table.tiers))
	for _, t := range p.table.tiers {
		n := p.counts[t.ID]
		pct := math.Min(100, float64(n)*100/float64(t.PityThreshold))
		out = append(out, PityStatus{
			TierID:         t.ID,
			DisplayName:    t.DisplayName,
			PullsSinceLast: n,
			Threshold:      t.PityThreshold,
			Percentage:     pct,
		})
	}
	return out
}

// Snapshot returns a flat tier -> count copy suitable for persistence.
func (p *PityTracker) Snapshot() map[TierID]int {
	out := make(map[TierID]int, len(p.counts))
	for k, v := range p.counts {
		out[k] = v
	}
	return out
}

// Restore loads persisted counters. Ids the table doesn't know are dropped,
// tiers missing from saved are 0, negative values are clamped to 0.
func (p *PityTracker) Restore(saved map[TierID]int) {
	for _, t := range p.table.tiers {
		n := saved[t.ID]
		if n < 0 {
			n = 0
		}
		p.counts[t.ID] = n
	}
}
