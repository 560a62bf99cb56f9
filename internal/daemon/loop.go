// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package daemon runs the event loop that ties the supervised processes
// to the scoring engine: every matched line is scored, and the per-IP
// table is decayed and pruned on a cadence checked at every wakeup.
package daemon

import (
	"context"
	"time"

	scoreerrors "github.com/netwatch-io/scoreward/internal/errors"
	"github.com/netwatch-io/scoreward/internal/ipaddr"
	"github.com/netwatch-io/scoreward/internal/logging"
	"github.com/netwatch-io/scoreward/internal/scoring"
	"github.com/netwatch-io/scoreward/internal/supervisor"
)

// Loop is the running daemon: a supervisor producing lines, a scoring
// engine consuming them, and a cleanup cadence.
type Loop struct {
	engine          *scoring.Engine
	supervisor      *supervisor.Supervisor
	cleanupInterval time.Duration
	restartSleep    time.Duration
	logger          *logging.Logger
}

// New builds a Loop ready to Run.
func New(engine *scoring.Engine, sup *supervisor.Supervisor, cleanupInterval, restartSleep time.Duration, logger *logging.Logger) *Loop {
	return &Loop{
		engine:          engine,
		supervisor:      sup,
		cleanupInterval: cleanupInterval,
		restartSleep:    restartSleep,
		logger:          logger,
	}
}

// Run starts every supervised process and services their lines until
// ctx is cancelled (a clean shutdown, returning nil) or a process exits
// fatally (returning its error). This is the channel-and-select
// translation of the original select()-over-file-descriptors loop: a
// self-pipe to interrupt the blocking select() becomes ctx cancellation,
// and the original's fixed-size fd_set becomes however many processes
// the supervisor happens to be running.
//
// The cleanup-interval check runs on every wakeup, immediately after
// waking and before doing anything else with the cause -- never on its
// own independent timer -- and runs Cleanup once at least cleanupInterval
// has passed since the last one, matching the original's ordering of the
// cleanup-interval check directly after select() returns.
func (l *Loop) Run(ctx context.Context) error {
	lines := make(chan supervisor.Line)
	errCh := l.supervisor.Run(ctx, lines, l.restartSleep)

	lastCleanup := time.Now()
	maybeCleanup := func(now time.Time) {
		if now.Sub(lastCleanup) >= l.cleanupInterval {
			l.engine.Cleanup(now)
			lastCleanup = now
		}
	}

	for {
		select {
		case <-ctx.Done():
			maybeCleanup(time.Now())
			return nil

		case line, ok := <-lines:
			now := time.Now()
			maybeCleanup(now)
			if !ok {
				lines = nil
				continue
			}
			if err := l.handleLine(line, now); err != nil {
				return err
			}

		case err, ok := <-errCh:
			now := time.Now()
			maybeCleanup(now)
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return err
			}
		}
	}
}

// handleLine matches line.Text against every pattern configured for its
// process -- all of them, never stopping at the first match, matching
// the original's per-line pattern loop -- and scores each match. A
// fatal error out of HandleIP (always KindKernel: the ban-set driver
// could not queue or commit a ban) is tagged with the process and ip
// that triggered it, then stops the loop and is returned to Run, which
// surfaces it to the caller exactly as the original's handle_ip
// propagates a kernel exception up through its own unguarded call
// site, to be caught only once at the top of run().
func (l *Loop) handleLine(line supervisor.Line, now time.Time) error {
	for _, pattern := range line.Process.Patterns {
		match := pattern.Regexp.FindStringSubmatch(line.Text)
		if match == nil {
			continue
		}
		ip, ok := ipaddr.Parse(match[1])
		if !ok {
			l.logger.Error("could not parse ip from line", "line", line.Text, "process", line.Process.Name)
			continue
		}
		if err := l.engine.HandleIP(ip, now, pattern.Score, line.Process.Name); err != nil {
			err = scoreerrors.Attr(err, "process", line.Process.Name)
			err = scoreerrors.Attr(err, "ip", ip.String())
			return err
		}
	}
	return nil
}
