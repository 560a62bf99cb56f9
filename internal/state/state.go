// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package state reads and writes the daemon's optional checkpoint file:
// a plaintext document, shaped like YAML, mapping each known IP address
// to its last score-adjustment time and current score.
package state

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/netwatch-io/scoreward/internal/errors"
)

// Record is the per-IP checkpoint entry.
type Record struct {
	LastScoreTime int64 `yaml:"last_scoretime"`
	Score         int   `yaml:"score"`
}

// State maps an IP address's string form to its Record.
type State map[string]Record

// Load decodes a checkpoint document from r.
func Load(r io.Reader) (State, error) {
	var s State
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, errors.KindState, "could not parse state file")
	}
	if s == nil {
		s = State{}
	}
	return s, nil
}

// Save encodes s to w in the same plaintext-YAML shape Load reads. Keys
// are written in whatever style the YAML encoder picks: IPv4 addresses
// unquoted, IPv6 addresses (which end in "::") quoted, so they read back
// as strings. Keys are not forced into double quotes.
func Save(w io.Writer, s State) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, errors.KindState, "could not write state file")
	}
	return nil
}
