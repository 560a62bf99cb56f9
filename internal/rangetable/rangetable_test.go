// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rangetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwatch-io/scoreward/internal/ipaddr"
)

func mustParse(t *testing.T, s string) ipaddr.Addr {
	t.Helper()
	a, ok := ipaddr.Parse(s)
	require.Truef(t, ok, "failed to parse %q", s)
	return a
}

func TestContainmentV4(t *testing.T) {
	var tb Table[string]
	net := mustParse(t, "192.168.0.0")
	v, ok := tb.FindOrInsert(net, 16)
	require.True(t, ok, "FindOrInsert rejected a valid /16")
	*v = "office"

	inside := mustParse(t, "192.168.200.5")
	got, ok := tb.FindRangeFor(inside)
	require.True(t, ok)
	assert.Equal(t, "office", *got)

	outside := mustParse(t, "192.169.0.1")
	_, ok = tb.FindRangeFor(outside)
	assert.False(t, ok, "FindRangeFor(outside) should miss")
}

func TestContainmentV6(t *testing.T) {
	var tb Table[string]
	net := mustParse(t, "fd00:11::")
	v, ok := tb.FindOrInsert(net, 64)
	require.True(t, ok, "FindOrInsert rejected a valid /64")
	*v = "lab"

	inside := mustParse(t, "fd00:11::")
	got, ok := tb.FindRangeFor(inside)
	require.True(t, ok)
	assert.Equal(t, "lab", *got)

	outside := mustParse(t, "fd00:12::")
	_, ok = tb.FindRangeFor(outside)
	assert.False(t, ok, "FindRangeFor(outside) should miss")
}

func TestMinimumPrefixPrecondition(t *testing.T) {
	var tb Table[int]

	_, ok := tb.FindOrInsert(mustParse(t, "10.0.0.0"), MinPrefixV4-1)
	assert.False(t, ok, "expected rejection of a too-short IPv4 prefix")

	_, ok = tb.FindOrInsert(mustParse(t, "10.0.0.0"), MinPrefixV4)
	assert.True(t, ok, "expected the minimum IPv4 prefix length to be accepted")

	_, ok = tb.FindOrInsert(mustParse(t, "fd00::"), MinPrefixV6-1)
	assert.False(t, ok, "expected rejection of a too-short IPv6 prefix")
}

func TestFirstPrefixLengthWins(t *testing.T) {
	var tb Table[int]
	net := mustParse(t, "10.1.0.0")

	_, ok := tb.FindOrInsert(net, 16)
	require.True(t, ok, "first insert should succeed")

	// A /24 at the same bucket-indexed address must not narrow the range
	// already registered with a /16.
	_, ok = tb.FindOrInsert(net, 24)
	require.True(t, ok, "second insert at same address should succeed (existing entry)")

	wideMember := mustParse(t, "10.1.200.0")
	_, ok = tb.FindRangeFor(wideMember)
	assert.True(t, ok, "range should still behave as the original /16")
}
