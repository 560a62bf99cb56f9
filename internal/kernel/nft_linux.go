// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux
// +build linux

package kernel

import (
	"errors"
	"syscall"
	"time"

	"github.com/google/nftables"

	scoreerrors "github.com/netwatch-io/scoreward/internal/errors"
	"github.com/netwatch-io/scoreward/internal/ipaddr"
	"github.com/netwatch-io/scoreward/internal/logging"
)

// NFTablesConn is the subset of *nftables.Conn this package drives,
// broken out so tests can supply a fake without a real netlink socket.
type NFTablesConn interface {
	GetSetByName(table *nftables.Table, name string) (*nftables.Set, error)
	SetAddElements(set *nftables.Set, elems []nftables.SetElement) error
	Flush() error
}

// resolveFamily maps the settings["nft"]["type"] string to the nftables
// table family it names.
func resolveFamily(typeName string) (nftables.TableFamily, error) {
	switch typeName {
	case "inet":
		return nftables.TableFamilyINet, nil
	case "ip":
		return nftables.TableFamilyIPv4, nil
	case "ip6":
		return nftables.TableFamilyIPv6, nil
	case "bridge":
		return nftables.TableFamilyBridge, nil
	case "arp":
		return nftables.TableFamilyARP, nil
	case "unspec":
		return nftables.TableFamilyUnspec, nil
	default:
		return 0, configErrorf("invalid table type %q", typeName)
	}
}

// NFTBanSet drives the nftables sets named in Config over netlink.
type NFTBanSet struct {
	conn    NFTablesConn
	ipv4Set *nftables.Set
	ipv6Set *nftables.Set
	pending struct {
		v4 []nftables.SetElement
		v6 []nftables.SetElement
	}
	logger *logging.Logger
}

// New opens a real netlink connection and resolves cfg's table and sets.
func New(cfg Config, logger *logging.Logger) (*NFTBanSet, error) {
	conn, err := nftables.New()
	if err != nil {
		return nil, scoreerrors.Wrap(err, scoreerrors.KindKernel, "could not open netlink connection")
	}
	return NewWithConn(conn, cfg, logger)
}

// NewWithConn builds an NFTBanSet over an already-open connection,
// letting tests substitute a fake NFTablesConn.
func NewWithConn(conn NFTablesConn, cfg Config, logger *logging.Logger) (*NFTBanSet, error) {
	family, err := resolveFamily(cfg.Type)
	if err != nil {
		return nil, err
	}
	table := &nftables.Table{Name: cfg.Table, Family: family}

	b := &NFTBanSet{conn: conn, logger: logger}
	if cfg.IPv4Set != "" {
		set, err := conn.GetSetByName(table, cfg.IPv4Set)
		if err != nil {
			return nil, scoreerrors.Wrapf(err, scoreerrors.KindConfig, "nftable set %q not found", cfg.IPv4Set)
		}
		if err := checkSet(set, false); err != nil {
			return nil, err
		}
		b.ipv4Set = set
	}
	if cfg.IPv6Set != "" {
		set, err := conn.GetSetByName(table, cfg.IPv6Set)
		if err != nil {
			return nil, scoreerrors.Wrapf(err, scoreerrors.KindConfig, "nftable set %q not found", cfg.IPv6Set)
		}
		if err := checkSet(set, true); err != nil {
			return nil, err
		}
		b.ipv6Set = set
	}
	return b, nil
}

// checkSet validates that set can actually carry the bans this driver
// queues into it, mirroring SystemBanSet::check_set: every configured
// set must support element timeouts (every ban is time-limited), an
// IPv6 set must additionally support interval elements (AddIP encodes
// IPv6 bans as a half-open interval), and the set's key type must match
// the address family it is being used for.
func checkSet(set *nftables.Set, wantV6 bool) error {
	if !set.HasTimeout {
		return scoreerrors.Errorf(scoreerrors.KindKernel, "nftable set %q does not support timeouts", set.Name)
	}
	if wantV6 && !set.Interval {
		return scoreerrors.Errorf(scoreerrors.KindKernel, "nftable set %q does not support intervals", set.Name)
	}
	wantType := nftables.TypeIPAddr
	if wantV6 {
		wantType = nftables.TypeIP6Addr
	}
	if set.KeyType.Bytes != wantType.Bytes {
		return scoreerrors.Errorf(scoreerrors.KindKernel, "nftable set %q is of the wrong key type", set.Name)
	}
	return nil
}

// AddIP queues ip for the pending batch. See BanSet.
func (b *NFTBanSet) AddIP(ip ipaddr.Addr, banTimeSeconds int) error {
	if ip.IsV6() {
		if b.ipv6Set == nil {
			return configErrorf("ipv6 banning is not configured")
		}
		key := ip.BytesV6()
		end := incrementV6(key)
		elem := nftables.SetElement{Key: key[:], KeyEnd: end[:]}
		if banTimeSeconds > 0 {
			elem.Timeout = time.Duration(banTimeSeconds) * time.Second
		}
		b.pending.v6 = append(b.pending.v6, elem)
		return nil
	}
	if b.ipv4Set == nil {
		return configErrorf("ipv4 banning is not configured")
	}
	key := ip.BytesV4()
	elem := nftables.SetElement{Key: key[:]}
	if banTimeSeconds > 0 {
		elem.Timeout = time.Duration(banTimeSeconds) * time.Second
	}
	b.pending.v4 = append(b.pending.v4, elem)
	return nil
}

// CommitBatch flushes pending additions, IPv6 before IPv4 in a single
// netlink batch, matching the source driver's commit ordering.
func (b *NFTBanSet) CommitBatch() error {
	if len(b.pending.v6) == 0 && len(b.pending.v4) == 0 {
		return nil
	}
	defer func() {
		b.pending.v4 = nil
		b.pending.v6 = nil
	}()
	if len(b.pending.v6) > 0 {
		if err := b.conn.SetAddElements(b.ipv6Set, b.pending.v6); err != nil {
			return classifyCommitError(b.logger, err)
		}
	}
	if len(b.pending.v4) > 0 {
		if err := b.conn.SetAddElements(b.ipv4Set, b.pending.v4); err != nil {
			return classifyCommitError(b.logger, err)
		}
	}
	if err := b.conn.Flush(); err != nil {
		return classifyCommitError(b.logger, err)
	}
	return nil
}

// classifyCommitError mirrors SystemBanSet::commit_batch's error handling:
// EEXIST (the address is already in the set) is logged and swallowed,
// ENOENT and anything else is fatal.
func classifyCommitError(logger *logging.Logger, err error) error {
	if errors.Is(err, syscall.EEXIST) {
		if logger != nil {
			logger.Error("ip already in table")
		}
		return nil
	}
	return scoreerrors.Wrap(err, scoreerrors.KindKernel, "could not commit nftables batch")
}
