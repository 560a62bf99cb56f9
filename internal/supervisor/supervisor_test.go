// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netwatch-io/scoreward/internal/config"
)

func TestSupervisorFansInLinesFromEveryProcess(t *testing.T) {
	s := New([]config.CompiledProcess{
		{Command: "echo one; sleep 30", Name: "a"},
		{Command: "echo two; sleep 30", Name: "b"},
	}, testLogger())

	lines := make(chan Line)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := s.Run(ctx, lines, 0)

	seen := map[string]bool{}
	timeout := time.After(5 * time.Second)
	for len(seen) < 2 {
		select {
		case l := <-lines:
			seen[l.Text] = true
		case err := <-errCh:
			t.Fatalf("Run() reported an unexpected error: %v", err)
		case <-timeout:
			t.Fatalf("timed out, only saw %v", seen)
		}
	}
	assert.True(t, seen["one"] && seen["two"], "seen = %v, want both \"one\" and \"two\"", seen)
}

func TestSupervisorPropagatesFatalError(t *testing.T) {
	s := New([]config.CompiledProcess{
		{Command: "exit 3", Name: "bad"},
		{Command: "sleep 30", Name: "good"},
	}, testLogger())

	lines := make(chan Line, 8)
	errCh := s.Run(context.Background(), lines, 0)

	select {
	case err := <-errCh:
		assert.Error(t, err, "expected a non-nil error from the failing process")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the fatal error")
	}
}
