// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config decodes the daemon's YAML settings document and builds
// the compiled, validated runtime configuration from it.
package config

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/netwatch-io/scoreward/internal/errors"
)

// NFTSettings is the settings["nft"] block. IPv4Set/IPv6Set are pointers
// so presence (not just non-emptiness) can be distinguished, matching
// the "has(\"ipv4set\")" / "has(\"ipv6set\")" family-enable check.
type NFTSettings struct {
	Type    string  `yaml:"type"`
	Table   string  `yaml:"table"`
	IPv4Set *string `yaml:"ipv4set"`
	IPv6Set *string `yaml:"ipv6set"`
}

// PatternSettings is one entry of processes[].patterns.
type PatternSettings struct {
	Pattern string `yaml:"pattern"`
	Score   int    `yaml:"score"`
}

// ProcessSettings is one entry of the top-level processes list.
type ProcessSettings struct {
	Command  string            `yaml:"command"`
	Name     string            `yaml:"name"`
	Patterns []PatternSettings `yaml:"patterns"`
}

// RangeTableSettings is one entry of the top-level rangetables list:
// either a CSV filename, or an inline ip/cidr/score triple.
type RangeTableSettings struct {
	Filename string `yaml:"filename,omitempty"`
	IP       string `yaml:"ip,omitempty"`
	CIDR     int    `yaml:"cidr,omitempty"`
	Score    int    `yaml:"score,omitempty"`
}

// ScoreDecaySettings is settings["scores"]["decay"].
type ScoreDecaySettings struct {
	Amount int `yaml:"amount"`
	Per    int `yaml:"per"`
}

// ScoreTierSettings is one value in settings["scores"]["table"], keyed by
// its string-encoded lower bound.
type ScoreTierSettings struct {
	BanTime int `yaml:"bantime"`
	Score   int `yaml:"score"`
}

// ScoresSettings is the settings["scores"] block.
type ScoresSettings struct {
	Decay ScoreDecaySettings           `yaml:"decay"`
	Table map[string]ScoreTierSettings `yaml:"table"`
}

// LogSettings is the optional settings["log"] block.
type LogSettings struct {
	Level    string `yaml:"level,omitempty"`
	Filename string `yaml:"filename,omitempty"`
}

// Settings is the raw decoded settings document.
type Settings struct {
	CleanupInterval int                  `yaml:"cleanupinterval"`
	RestartUsleep   int                  `yaml:"restartusleep"`
	NFT             NFTSettings          `yaml:"nft"`
	Processes       []ProcessSettings    `yaml:"processes"`
	RangeTables     []RangeTableSettings `yaml:"rangetables"`
	Scores          ScoresSettings       `yaml:"scores"`
	StateFile       string               `yaml:"statefile,omitempty"`
	Log             LogSettings          `yaml:"log,omitempty"`
}

// Load decodes a settings document from r and validates the fields that
// can be checked before the rest of the configuration is built: that
// "cleanupinterval" was actually present (it has no default), and that
// "restartusleep", which does default to zero, was not given as negative.
func Load(r io.Reader) (*Settings, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "could not read settings")
	}

	var raw map[string]any
	if err := yaml.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, errors.KindConfig, "could not parse settings")
	}
	if _, ok := raw["cleanupinterval"]; !ok {
		return nil, errors.New(errors.KindConfig, "\"cleanupinterval\" is required")
	}

	var s Settings
	if err := yaml.Unmarshal(body, &s); err != nil {
		return nil, errors.Wrap(err, errors.KindConfig, "could not decode settings")
	}

	if s.RestartUsleep < 0 {
		return nil, errors.New(errors.KindConfig, "\"restartusleep\" must not be negative")
	}

	return &s, nil
}
