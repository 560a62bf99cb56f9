// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/netwatch-io/scoreward/internal/config"
	"github.com/netwatch-io/scoreward/internal/logging"
)

// Supervisor runs every configured process's read loop concurrently,
// fanning their lines into one channel. This is the goroutine-and-channel
// translation of the original's single-threaded select() over every
// child's file descriptor plus a self-pipe: here each child gets its own
// goroutine, and the self-pipe becomes ctx cancellation.
type Supervisor struct {
	processes []*Process
	logger    *logging.Logger
}

// New wraps every compiled process for supervision.
func New(compiled []config.CompiledProcess, logger *logging.Logger) *Supervisor {
	procs := make([]*Process, len(compiled))
	for i, cp := range compiled {
		procs[i] = NewProcess(cp)
	}
	return &Supervisor{processes: procs, logger: logger}
}

// Processes returns the supervised processes, for tests and diagnostics.
func (s *Supervisor) Processes() []*Process {
	return s.processes
}

// Run starts every process and returns a channel that receives the error
// of a process that exits fatally; the first such error cancels the rest.
// The channel is closed once every process's goroutine has exited, so an
// error may arrive while other goroutines are still stopping.
func (s *Supervisor) Run(ctx context.Context, lines chan<- Line, restartSleep time.Duration) <-chan error {
	ctx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, len(s.processes))

	var wg sync.WaitGroup
	for _, p := range s.processes {
		wg.Add(1)
		go func(p *Process) {
			defer wg.Done()
			if err := p.Run(ctx, lines, restartSleep, s.logger); err != nil {
				select {
				case errCh <- err:
				default:
				}
				cancel()
			}
		}(p)
	}

	go func() {
		wg.Wait()
		cancel()
		close(errCh)
	}()

	return errCh
}
