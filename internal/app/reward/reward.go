// Package reward holds the fixed reward catalog and balance-checked
// redemption.
package reward

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/healthquest/healthquest/internal/app/points"
	"github.com/healthquest/healthquest/internal/domain"
)

// Catalog maps a unique positive cost to a reward. It is read-only after
// construction.
type Catalog struct {
	entries []domain.Reward
	byCost  map[int64]int
}

// NewCatalog validates rewards and orders them by cost.
func NewCatalog(rewards []domain.Reward) (*Catalog, error) {
	c := &Catalog{
		entries: make([]domain.Reward, 0, len(rewards)),
		byCost:  make(map[int64]int, len(rewards)),
	}
	for _, r := range rewards {
		if r.Cost <= 0 {
			return nil, fmt.Errorf("reward %q: cost must be positive, got %d", r.Description, r.Cost)
		}
		if strings.TrimSpace(r.Description) == "" {
			return nil, fmt.Errorf("reward costing %d has no description", r.Cost)
		}
		if _, dup := c.byCost[r.Cost]; dup {
			return nil, fmt.Errorf("duplicate reward cost %d", r.Cost)
		}
		c.byCost[r.Cost] = -1
		c.entries = append(c.entries, r)
	}
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].Cost < c.entries[j].Cost })
	for i, r := range c.entries {
		c.byCost[r.Cost] = i
	}
	return c, nil
}

// Lookup finds the reward for cost.
func (c *Catalog) Lookup(cost int64) (domain.Reward, bool) {
	i, ok := c.byCost[cost]
	if !ok {
		return domain.Reward{}, false
	}
	return c.entries[i], true
}

// Entries returns the catalog ordered by cost.
func (c *Catalog) Entries() []domain.Reward {
	out := make([]domain.Reward, len(c.entries))
	copy(out, c.entries)
	return out
}

// List annotates each reward with whether balance covers it.
func (c *Catalog) List(balance int64) []domain.RewardView {
	out := make([]domain.RewardView, len(c.entries))
	for i, r := range c.entries {
		out[i] = domain.RewardView{Reward: r, Affordable: balance >= r.Cost}
	}
	return out
}

// Redeem spends cost on its reward. The balance check and the append happen
// against the same ledger, so redemption either fully succeeds or changes
// nothing.
func (c *Catalog) Redeem(ledger *points.Ledger, cost int64, at time.Time) (domain.Reward, domain.LedgerEntry, error) {
	if cost <= 0 {
		return domain.Reward{}, domain.LedgerEntry{}, domain.Errorf(domain.ErrValidation, "reward cost must be positive, got %d", cost)
	}
	r, ok := c.Lookup(cost)
	if !ok {
		return domain.Reward{}, domain.LedgerEntry{}, domain.Errorf(domain.ErrNotFound, "no reward costs %d points", cost)
	}
	total, err := ledger.CurrentTotal()
	if err != nil {
		return domain.Reward{}, domain.LedgerEntry{}, err
	}
	if total < cost {
		return domain.Reward{}, domain.LedgerEntry{}, domain.Errorf(domain.ErrInsufficientPoints,
			"not enough points for %q: have %d, need %d", r.Description, total, cost)
	}
	entry, err := ledger.Append(domain.EntryRedemption, -cost, "Redeemed: "+r.Description, at)
	if err != nil {
		return domain.Reward{}, domain.LedgerEntry{}, err
	}
	return r, entry, nil
}
