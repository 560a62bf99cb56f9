// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build !linux
// +build !linux

package kernel

import (
	"github.com/netwatch-io/scoreward/internal/ipaddr"
	"github.com/netwatch-io/scoreward/internal/logging"
)

// NFTBanSet is an unusable placeholder on non-Linux builds, kept so the
// package exports the same type regardless of platform.
type NFTBanSet struct{}

// New always fails outside Linux: there is no kernel nftables subsystem
// for a real BanSet to drive.
func New(cfg Config, logger *logging.Logger) (*NFTBanSet, error) {
	return nil, configErrorf("nftables banning requires a linux kernel")
}

func (*NFTBanSet) AddIP(_ ipaddr.Addr, _ int) error {
	return configErrorf("nftables banning requires a linux kernel")
}

func (*NFTBanSet) CommitBatch() error {
	return configErrorf("nftables banning requires a linux kernel")
}
