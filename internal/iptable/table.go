// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package iptable implements the bucketed container used to index
// per-IP state: a fixed array of buckets, one sorted slice per bucket,
// located by binary search. Iteration order follows bucket index then
// in-bucket position, not numeric IP order.
package iptable

import (
	"sort"

	"github.com/netwatch-io/scoreward/internal/ipaddr"
)

const (
	v4BucketBits = 8
	v6BucketBits = 12
	v6SkipBits   = 6

	v4Buckets = 1 << v4BucketBits
	v6Buckets = 1 << v6BucketBits

	numBuckets = v4Buckets + v6Buckets
)

type entry[V any] struct {
	ip    ipaddr.Addr
	value V
}

// Table is a bucketed map keyed by ipaddr.Addr. The zero value is ready
// to use. It is not safe for concurrent use; callers serialize access
// (the daemon event loop owns every Table it touches).
type Table[V any] struct {
	buckets [numBuckets][]entry[V]
	size    int
}

// bucketIndex returns the bucket an address falls into: the top 8 bits
// of an IPv4 address, or bits [57:46] of an IPv6 /64 prefix offset past
// the 256 IPv4 buckets.
func bucketIndex(ip ipaddr.Addr) int {
	if ip.IsV6() {
		return int((uint64(ip)>>(64-v6BucketBits-v6SkipBits))&(v6Buckets-1)) + v4Buckets
	}
	return int(uint64(ip) >> (32 - v4BucketBits))
}

func search[V any](bucket []entry[V], ip ipaddr.Addr) int {
	return sort.Search(len(bucket), func(i int) bool { return bucket[i].ip >= ip })
}

// Len returns the number of entries across all buckets.
func (t *Table[V]) Len() int {
	return t.size
}

// Find returns the value stored for ip, if any.
func (t *Table[V]) Find(ip ipaddr.Addr) (V, bool) {
	bucket := t.buckets[bucketIndex(ip)]
	i := search(bucket, ip)
	if i < len(bucket) && bucket[i].ip == ip {
		return bucket[i].value, true
	}
	var zero V
	return zero, false
}

// FindOrInsert returns a pointer to the value stored for ip, inserting a
// zero-valued entry at the correct sorted position within its bucket if
// one does not already exist. existed reports whether ip was already
// present.
func (t *Table[V]) FindOrInsert(ip ipaddr.Addr) (existed bool, value *V) {
	idx := bucketIndex(ip)
	bucket := t.buckets[idx]
	i := search(bucket, ip)
	if i < len(bucket) && bucket[i].ip == ip {
		return true, &t.buckets[idx][i].value
	}
	bucket = append(bucket, entry[V]{})
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = entry[V]{ip: ip}
	t.buckets[idx] = bucket
	t.size++
	return false, &t.buckets[idx][i].value
}

// Remove deletes the entry for ip, if present, and reports whether it
// was present.
func (t *Table[V]) Remove(ip ipaddr.Addr) bool {
	idx := bucketIndex(ip)
	bucket := t.buckets[idx]
	i := search(bucket, ip)
	if i >= len(bucket) || bucket[i].ip != ip {
		return false
	}
	copy(bucket[i:], bucket[i+1:])
	t.buckets[idx] = bucket[:len(bucket)-1]
	t.size--
	return true
}

// LowerBound returns the entry with the largest key less than or equal
// to ip within ip's own bucket, i.e. the same range-lookup primitive the
// original table uses for CIDR containment: callers that need the
// enclosing range for an address only ever look inside that address's
// bucket, never across bucket boundaries.
func (t *Table[V]) LowerBound(ip ipaddr.Addr) (found ipaddr.Addr, value *V, ok bool) {
	idx := bucketIndex(ip)
	bucket := t.buckets[idx]
	i := search(bucket, ip)
	if i < len(bucket) && bucket[i].ip == ip {
		return bucket[i].ip, &t.buckets[idx][i].value, true
	}
	if i == 0 {
		var zero ipaddr.Addr
		return zero, nil, false
	}
	return bucket[i-1].ip, &t.buckets[idx][i-1].value, true
}

// Range calls fn for every entry in bucket order, stopping early if fn
// returns false. fn must not insert or remove entries in t.
func (t *Table[V]) Range(fn func(ip ipaddr.Addr, value *V) bool) {
	for b := range t.buckets {
		for i := range t.buckets[b] {
			if !fn(t.buckets[b][i].ip, &t.buckets[b][i].value) {
				return
			}
		}
	}
}
