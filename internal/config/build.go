// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/netwatch-io/scoreward/internal/errors"
	"github.com/netwatch-io/scoreward/internal/ipaddr"
	"github.com/netwatch-io/scoreward/internal/rangetable"
	"github.com/netwatch-io/scoreward/internal/scoretable"
)

// CompiledPattern is a process pattern after {{ip}} substitution,
// anchoring and the single-capture-group check.
type CompiledPattern struct {
	Regexp *regexp.Regexp
	Score  int
}

// CompiledProcess is a processes[] entry ready to hand to the supervisor.
type CompiledProcess struct {
	Command  string
	Name     string
	Patterns []CompiledPattern
}

// NFTConfig is the resolved ban-set driver configuration.
type NFTConfig struct {
	Type        string
	Table       string
	IPv4Set     string
	IPv6Set     string
	IPv4Enabled bool
	IPv6Enabled bool
}

// Built is the fully validated, ready-to-run configuration derived from
// a Settings document.
type Built struct {
	CleanupInterval    time.Duration
	RestartSleep       time.Duration
	NFT                NFTConfig
	Processes          []CompiledProcess
	RangeTable         *rangetable.Table[int]
	ScoreDecayAmount   int
	ScoreDecayInterval time.Duration
	ScoreTable         *scoretable.Table
	StateFile          string
}

// Build validates s and compiles it into a Built configuration. Every
// failure is returned as a *errors.Error with Kind KindConfig.
func Build(s *Settings) (*Built, error) {
	b := &Built{
		CleanupInterval: time.Duration(s.CleanupInterval) * time.Second,
		RestartSleep:    time.Duration(s.RestartUsleep) * time.Microsecond,
		StateFile:       s.StateFile,
		NFT: NFTConfig{
			Type:        s.NFT.Type,
			Table:       s.NFT.Table,
			IPv4Enabled: s.NFT.IPv4Set != nil,
			IPv6Enabled: s.NFT.IPv6Set != nil,
		},
	}
	if s.NFT.IPv4Set != nil {
		b.NFT.IPv4Set = *s.NFT.IPv4Set
	}
	if s.NFT.IPv6Set != nil {
		b.NFT.IPv6Set = *s.NFT.IPv6Set
	}

	for _, ps := range s.Processes {
		cp := CompiledProcess{Command: ps.Command, Name: ps.Name}
		for _, pat := range ps.Patterns {
			substituted, err := fillTemplate(pat.Pattern)
			if err != nil {
				return nil, err
			}
			re, err := regexp.Compile("^(?:" + substituted + ")$")
			if err != nil {
				return nil, errors.Wrapf(err, errors.KindConfig, "invalid pattern %q", pat.Pattern)
			}
			if re.NumSubexp() != 1 {
				return nil, errors.Errorf(errors.KindConfig, "pattern needs exactly one subgroup: %q", substituted)
			}
			cp.Patterns = append(cp.Patterns, CompiledPattern{Regexp: re, Score: pat.Score})
		}
		b.Processes = append(b.Processes, cp)
	}

	var rt rangetable.Table[int]
	for _, rts := range s.RangeTables {
		if rts.Filename != "" {
			if err := loadRangeFile(&rt, rts.Filename); err != nil {
				return nil, err
			}
			continue
		}
		ip, ok := ipaddr.Parse(rts.IP)
		if !ok {
			return nil, errors.Errorf(errors.KindConfig, "invalid ip %q in rangetables entry", rts.IP)
		}
		v, ok := rt.FindOrInsert(ip, rts.CIDR)
		if !ok {
			return nil, errors.Errorf(errors.KindConfig, "cidr %d for %q is shorter than the minimum indexable prefix", rts.CIDR, rts.IP)
		}
		*v = rts.Score
	}
	b.RangeTable = &rt

	if s.Scores.Decay.Per <= 0 {
		return nil, errors.Errorf(errors.KindConfig, "scores.decay.per must be positive, got %d", s.Scores.Decay.Per)
	}
	b.ScoreDecayAmount = s.Scores.Decay.Amount
	b.ScoreDecayInterval = time.Duration(s.Scores.Decay.Per) * time.Second

	st := scoretable.New(0)
	for boundStr, tier := range s.Scores.Table {
		bound, err := strconv.Atoi(boundStr)
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindConfig, "invalid score table key %q", boundStr)
		}
		st.Add(scoretable.Tier{LowerBound: bound, BanTime: tier.BanTime, AddScore: tier.Score})
	}
	b.ScoreTable = st

	return b, nil
}

func loadRangeFile(rt *rangetable.Table[int], filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, errors.KindConfig, "could not open %q", filename)
	}
	defer f.Close()

	rows, err := ParseRangeFile(f)
	if err != nil {
		return err
	}
	for _, row := range rows {
		ip, ok := ipaddr.Parse(row.IP)
		if !ok {
			return errors.Errorf(errors.KindConfig, "invalid ip %q in %q", row.IP, filename)
		}
		v, ok := rt.FindOrInsert(ip, row.CIDR)
		if !ok {
			return errors.Errorf(errors.KindConfig, "cidr %d for %q in %q is shorter than the minimum indexable prefix", row.CIDR, row.IP, filename)
		}
		*v = row.Score
	}
	return nil
}
