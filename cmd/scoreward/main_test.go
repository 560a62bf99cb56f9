// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package main

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netwatch-io/scoreward/internal/version"
)

func TestRunNoArgsReturnsUsageCode(t *testing.T) {
	assert.Equal(t, 1, run([]string{"scoreward"}))
}

func TestRunUnknownFlagReturnsUsageCode(t *testing.T) {
	assert.Equal(t, 1, run([]string{"scoreward", "--nope"}))
}

func TestRunVersionFlag(t *testing.T) {
	assert.Equal(t, 0, run([]string{"scoreward", "--version"}))
	assert.Equal(t, 0, run([]string{"scoreward", "-v"}))
}

func TestRunHelpFlag(t *testing.T) {
	assert.Equal(t, 0, run([]string{"scoreward", "--help"}))
}

// captureStdout runs fn with os.Stdout redirected and returns everything
// fn wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestRunDiffFlagPrintsPlaceholderWhenEmpty(t *testing.T) {
	orig := version.Diff
	version.Diff = ""
	defer func() { version.Diff = orig }()

	var code int
	out := captureStdout(t, func() { code = run([]string{"scoreward", "--diff"}) })

	assert.Equal(t, 0, code)
	assert.Equal(t, "no embedded diff\n", out)
}

func TestRunDiffFlagPrintsEmbeddedDiff(t *testing.T) {
	orig := version.Diff
	version.Diff = "--- a/x\n+++ b/x\n"
	defer func() { version.Diff = orig }()

	var code int
	out := captureStdout(t, func() { code = run([]string{"scoreward", "--diff"}) })

	assert.Equal(t, 0, code)
	assert.Equal(t, version.Diff, out)
}

func TestRunDryRunRequiresExactlyThreeArgs(t *testing.T) {
	assert.Equal(t, 1, run([]string{"scoreward", "--dry-run"}), "missing settings path")
	assert.Equal(t, 1, run([]string{"scoreward", "--dry-run", "a", "b"}), "extra args")
}

func TestRunMissingSettingsFileIsFatal(t *testing.T) {
	assert.Equal(t, 255, run([]string{"scoreward", filepath.Join(t.TempDir(), "missing.yaml")}))
}

func TestRunEndToEndDryRunStopsOnSignal(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.yaml")
	doc := `
cleanupinterval: 3600
processes:
  - command: "sleep 30"
    name: noop
scores:
  decay:
    amount: 1
    per: 60
`
	require.NoError(t, os.WriteFile(settingsPath, []byte(doc), 0o644))

	done := make(chan int, 1)
	go func() { done <- run([]string{"scoreward", "--dry-run", settingsPath}) }()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case code := <-done:
		assert.Equal(t, 0, code, "run() after SIGTERM should report a clean shutdown")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run() to return after SIGTERM")
	}
}
