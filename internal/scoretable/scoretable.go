// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package scoretable implements the step-function mapping from an
// accumulated score to a ban tier.
package scoretable

import "sort"

// Tier is one step of the threshold function: scores at or above
// LowerBound (and below the next tier's LowerBound) map to this tier.
type Tier struct {
	LowerBound int
	BanTime    int
	AddScore   int
}

// Table is an ordered sequence of Tiers, built with New, which seeds the
// base tier at LowerBound 0. The zero value holds no tiers, and Lookup on
// it panics.
type Table struct {
	tiers []Tier
}

// New returns a Table seeded with the base tier, whose AddScore is
// baseAddScore. This mirrors the constructor behavior of always having a
// tier covering score zero so Lookup never has nothing to return.
func New(baseAddScore int) *Table {
	return &Table{tiers: []Tier{{LowerBound: 0, BanTime: 0, AddScore: baseAddScore}}}
}

// Add inserts tier, placed before the first existing tier with a strictly
// greater LowerBound. Tiers sharing a LowerBound with ones already
// present are kept in insertion order, so of several tiers configured
// with equal bounds, the last one added is the one Lookup returns.
func (tb *Table) Add(tier Tier) {
	i := sort.Search(len(tb.tiers), func(i int) bool { return tb.tiers[i].LowerBound > tier.LowerBound })
	tb.tiers = append(tb.tiers, Tier{})
	copy(tb.tiers[i+1:], tb.tiers[i:])
	tb.tiers[i] = tier
}

// Lookup returns the tier whose LowerBound is the greatest one not
// exceeding score.
func (tb *Table) Lookup(score int) Tier {
	i := sort.Search(len(tb.tiers), func(i int) bool { return tb.tiers[i].LowerBound > score })
	return tb.tiers[i-1]
}
