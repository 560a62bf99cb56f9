// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package scoring holds the per-IP score bookkeeping and ban decision
// logic: decay, range/whitelist lookups, tier lookups and the resulting
// ban-set commits.
package scoring

import (
	"time"

	"github.com/netwatch-io/scoreward/internal/config"
	"github.com/netwatch-io/scoreward/internal/errors"
	"github.com/netwatch-io/scoreward/internal/ipaddr"
	"github.com/netwatch-io/scoreward/internal/iptable"
	"github.com/netwatch-io/scoreward/internal/kernel"
	"github.com/netwatch-io/scoreward/internal/logging"
	"github.com/netwatch-io/scoreward/internal/rangetable"
	"github.com/netwatch-io/scoreward/internal/scoretable"
	"github.com/netwatch-io/scoreward/internal/state"
)

// BanData is the per-IP bookkeeping record: when its score was last
// adjusted for decay, when it was last banned, and its current score.
type BanData struct {
	LastScoreTime time.Time
	LastBanTime   time.Time
	Score         int
}

// Engine holds every piece of state handle_ip and cleanup touch: the
// whitelist/penalty range table, the per-IP score table, the ban tier
// table and the ban-set driver.
type Engine struct {
	rangeTable         *rangetable.Table[int]
	ipTable            iptable.Table[BanData]
	scoreDecayAmount   int
	scoreDecayInterval time.Duration
	scoreTable         *scoretable.Table
	banSet             kernel.BanSet
	dryRun             bool
	ipv4Enabled        bool
	ipv6Enabled        bool
	logger             *logging.Logger
}

// New builds an Engine from a validated configuration. banSet may be nil
// only if dryRun is true, matching the source's rule that the driver is
// never constructed at all when running with --dry-run.
func New(built *config.Built, banSet kernel.BanSet, dryRun bool, logger *logging.Logger) *Engine {
	return &Engine{
		rangeTable:         built.RangeTable,
		scoreDecayAmount:   built.ScoreDecayAmount,
		scoreDecayInterval: built.ScoreDecayInterval,
		scoreTable:         built.ScoreTable,
		banSet:             banSet,
		dryRun:             dryRun,
		ipv4Enabled:        built.NFT.IPv4Enabled,
		ipv6Enabled:        built.NFT.IPv6Enabled,
		logger:             logger,
	}
}

// AdjustScore applies linear decay to bandata's score for the time
// elapsed since its last adjustment, clamping at zero, and advances its
// LastScoreTime to now. Integer division mirrors the source's
// elapsed-seconds*decay/interval arithmetic exactly, including its
// truncation toward zero.
func (e *Engine) AdjustScore(bandata *BanData, now time.Time) {
	elapsed := int64(now.Sub(bandata.LastScoreTime) / time.Second)
	diff := int(elapsed*int64(e.scoreDecayAmount)) / int(e.scoreDecayInterval/time.Second)
	if bandata.Score <= diff {
		bandata.Score = 0
	} else {
		bandata.Score -= diff
	}
	bandata.LastScoreTime = now
}

// Cleanup decays every tracked IP's score and removes any that have
// decayed to zero or below. Removal happens in a second pass since
// iptable.Table.Range forbids mutating the table mid-iteration.
func (e *Engine) Cleanup(now time.Time) {
	var toRemove []ipaddr.Addr
	e.ipTable.Range(func(ip ipaddr.Addr, bandata *BanData) bool {
		e.AdjustScore(bandata, now)
		if bandata.Score <= 0 {
			toRemove = append(toRemove, ip)
		}
		return true
	})
	for _, ip := range toRemove {
		e.ipTable.Remove(ip)
	}
}

// HandleIP applies a single pattern match for ip, seen on processName,
// to the running score state: family-enable check, range/whitelist
// lookup, decay-adjusted score update, tier lookup and, if the
// resulting tier bans, a ban-set commit.
func (e *Engine) HandleIP(ip ipaddr.Addr, now time.Time, addScore int, processName string) error {
	if !e.ipv4Enabled && !ip.IsV6() {
		e.logger.Debug("match, ipv4 disabled", "process", processName, "ip", ip.String(), "add_score", addScore)
		return nil
	}
	if !e.ipv6Enabled && ip.IsV6() {
		e.logger.Debug("match, ipv6 disabled", "process", processName, "ip", ip.String(), "add_score", addScore)
		return nil
	}

	if rangeScore, ok := e.rangeTable.FindRangeFor(ip); ok {
		if *rangeScore <= 0 {
			e.logger.Info("match, always allowed", "process", processName, "ip", ip.String(), "add_score", addScore)
			return nil
		}
		addScore += *rangeScore
	}

	found, bandata := e.ipTable.FindOrInsert(ip)
	if found {
		e.AdjustScore(bandata, now)
	}
	bandata.LastScoreTime = now
	bandata.Score += addScore

	tier := e.scoreTable.Lookup(bandata.Score)
	bandata.Score += tier.AddScore

	if tier.BanTime > 0 {
		e.logger.Info("match, banning", "process", processName, "ip", ip.String(), "add_score", addScore, "score", bandata.Score, "ban_seconds", tier.BanTime)
		if !e.dryRun {
			if err := e.banSet.AddIP(ip, tier.BanTime); err != nil {
				return errors.Wrap(err, errors.KindKernel, "could not queue ban")
			}
			if err := e.banSet.CommitBatch(); err != nil {
				return errors.Wrap(err, errors.KindKernel, "could not commit ban")
			}
		}
		bandata.LastBanTime = now
	} else {
		e.logger.Info("match", "process", processName, "ip", ip.String(), "add_score", addScore, "score", bandata.Score)
	}
	return nil
}

// ReadState seeds the engine's per-IP table from a loaded checkpoint.
// Entries with unparseable IP keys are skipped and logged rather than
// failing the whole load, since a single corrupt line shouldn't discard
// every other IP's history.
func (e *Engine) ReadState(s state.State) {
	for key, rec := range s {
		ip, ok := ipaddr.Parse(key)
		if !ok {
			e.logger.Error("could not parse ip from state file", "ip", key)
			continue
		}
		_, bandata := e.ipTable.FindOrInsert(ip)
		bandata.LastScoreTime = time.Unix(rec.LastScoreTime, 0)
		bandata.Score = rec.Score
	}
}

// WriteState snapshots the engine's per-IP table into a checkpoint.
func (e *Engine) WriteState() state.State {
	s := state.State{}
	e.ipTable.Range(func(ip ipaddr.Addr, bandata *BanData) bool {
		s[ip.String()] = state.Record{
			LastScoreTime: bandata.LastScoreTime.Unix(),
			Score:         bandata.Score,
		}
		return true
	})
	return s
}
