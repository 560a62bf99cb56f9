// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package scoretable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseTierCoversZero(t *testing.T) {
	tb := New(5)
	assert.Equal(t, Tier{LowerBound: 0, BanTime: 0, AddScore: 5}, tb.Lookup(0))
}

func TestThresholdSelection(t *testing.T) {
	tb := New(1)
	tb.Add(Tier{LowerBound: 10, BanTime: 60, AddScore: 0})
	tb.Add(Tier{LowerBound: 50, BanTime: 600, AddScore: 0})

	cases := []struct {
		score   int
		banTime int
	}{
		{0, 0},
		{9, 0},
		{10, 60},
		{49, 60},
		{50, 600},
		{1000, 600},
	}
	for _, c := range cases {
		assert.Equalf(t, c.banTime, tb.Lookup(c.score).BanTime, "Lookup(%d).BanTime", c.score)
	}
}

func TestDuplicateLowerBoundLastWins(t *testing.T) {
	tb := New(0)
	tb.Add(Tier{LowerBound: 10, BanTime: 60, AddScore: 0})
	tb.Add(Tier{LowerBound: 10, BanTime: 120, AddScore: 0})

	assert.Equal(t, 120, tb.Lookup(10).BanTime, "last-added tier should win")
}
