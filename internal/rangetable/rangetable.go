// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package rangetable implements a CIDR-keyed table layered on
// internal/iptable: each entry stores both a value and the prefix length
// it was registered under, and a lookup tests whether an address falls
// inside the nearest range registered at or below it in its bucket.
// Overlapping ranges are not rejected; only that nearest one is tested.
package rangetable

import (
	"github.com/netwatch-io/scoreward/internal/ipaddr"
	"github.com/netwatch-io/scoreward/internal/iptable"
)

// MinPrefixV4 and MinPrefixV6 are the shortest CIDR prefixes that can be
// indexed: shorter prefixes would span more than one bucket's worth of
// addresses and can't be located by a single bucket lookup.
const (
	MinPrefixV4 = 8
	MinPrefixV6 = 18
)

type rangeEntry[V any] struct {
	prefixLen int
	value     V
}

// Table indexes values by CIDR range. The zero value is ready to use.
type Table[V any] struct {
	inner iptable.Table[rangeEntry[V]]
}

// minPrefix returns the shortest prefix length permitted for ip's
// address family.
func minPrefix(ip ipaddr.Addr) int {
	if ip.IsV6() {
		return MinPrefixV6
	}
	return MinPrefixV4
}

func totalBits(ip ipaddr.Addr) int {
	if ip.IsV6() {
		return 64
	}
	return 32
}

// FindOrInsert registers ip/prefixLen, returning a pointer to its value.
// If a range is already registered at exactly this network address, its
// originally registered prefix length is preserved -- a later call with
// a different prefixLen for the same network address does not change it.
// ok is false if prefixLen is shorter than the address family's minimum
// indexable prefix.
func (t *Table[V]) FindOrInsert(ip ipaddr.Addr, prefixLen int) (value *V, ok bool) {
	if prefixLen < minPrefix(ip) {
		return nil, false
	}
	existed, entry := t.inner.FindOrInsert(ip)
	if !existed {
		entry.prefixLen = prefixLen
	}
	return &entry.value, true
}

// FindRangeFor returns the value of the range containing ip, if any.
func (t *Table[V]) FindRangeFor(ip ipaddr.Addr) (value *V, ok bool) {
	found, entry, ok := t.inner.LowerBound(ip)
	if !ok {
		return nil, false
	}
	shift := uint(totalBits(ip) - entry.prefixLen)
	if (uint64(ip) >> shift) != (uint64(found) >> shift) {
		return nil, false
	}
	return &entry.value, true
}

// Len returns the number of registered ranges.
func (t *Table[V]) Len() int {
	return t.inner.Len()
}
