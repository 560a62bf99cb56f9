// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package kernel drives the nftables sets the daemon bans IPs into. The
// real implementation (nft_linux.go) talks to the kernel over netlink via
// google/nftables; non-Linux builds get a stub that always errors, since
// there is no kernel nftables subsystem to drive.
package kernel

import (
	"github.com/netwatch-io/scoreward/internal/errors"
	"github.com/netwatch-io/scoreward/internal/ipaddr"
)

// BanSet accumulates and commits IP bans into the configured nftables
// sets.
type BanSet interface {
	// AddIP queues ip for addition to the set matching its address
	// family, with a timeout of banTimeSeconds (no timeout if zero or
	// negative). The addition is not visible to the kernel until
	// CommitBatch is called.
	AddIP(ip ipaddr.Addr, banTimeSeconds int) error
	// CommitBatch sends every queued addition since the last commit in
	// a single netlink batch, IPv6 before IPv4, and clears the queue.
	CommitBatch() error
}

// Config selects the nftables table and sets a BanSet drives.
type Config struct {
	Type    string // "inet", "ip", "ip6", "bridge", "arp" or "unspec"
	Table   string
	IPv4Set string // empty disables IPv4 banning
	IPv6Set string // empty disables IPv6 banning
}

// incrementV6 returns b+1 as a 16-byte big-endian value, carrying across
// byte boundaries. Used to turn an IPv6 /64 prefix into the half-open
// interval [ip, ip+1) a single interval-set element encodes.
func incrementV6(b [16]byte) [16]byte {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			break
		}
	}
	return b
}

// configErrorf is shorthand for a KindConfig error about the ban-set
// configuration itself: an unknown table type, an address family with no
// set configured, or a platform without nftables. A set that exists but
// has the wrong properties is reported by checkSet as KindKernel instead.
func configErrorf(format string, args ...any) error {
	return errors.Errorf(errors.KindConfig, format, args...)
}
