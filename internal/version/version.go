// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package version holds build-time metadata injected via -ldflags -X.
package version

// Version is the release version string. Overridden at build time with:
//
//	-ldflags "-X github.com/netwatch-io/scoreward/internal/version.Version=1.2.3"
var Version = "dev"

// Diff is an optional unified diff of local modifications present at
// build time, embedded the same way. Empty when the binary was built
// from a clean checkout.
var Diff = ""
