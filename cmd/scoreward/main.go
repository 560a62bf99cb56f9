// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command scoreward bans IPs whose matched log lines accumulate enough
// score, by driving nftables sets over netlink.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/netwatch-io/scoreward/internal/config"
	"github.com/netwatch-io/scoreward/internal/daemon"
	"github.com/netwatch-io/scoreward/internal/errors"
	"github.com/netwatch-io/scoreward/internal/kernel"
	"github.com/netwatch-io/scoreward/internal/logging"
	"github.com/netwatch-io/scoreward/internal/scoring"
	"github.com/netwatch-io/scoreward/internal/state"
	"github.com/netwatch-io/scoreward/internal/supervisor"
	"github.com/netwatch-io/scoreward/internal/version"
)

func usage(program string) string {
	return fmt.Sprintf(`scoreward - ban IPs based on log pattern matches
Version: %s

Usage:   %s (<option> | <settingsfile>)
Options:
  -d, --dry-run  Dry run
  -h, --help     Print this help text
  -v, --version  Print version
`, version.Version, program)
}

func main() {
	os.Exit(run(os.Args))
}

// run contains everything main would otherwise do directly, so tests
// can drive it with arbitrary argv without invoking the process.
func run(args []string) int {
	if len(args) < 2 {
		fmt.Fprint(os.Stderr, usage(args[0]))
		return 1
	}

	arg := args[1]
	dryRun := false
	if len(arg) > 1 && arg[0] == '-' {
		switch arg {
		case "--version", "-v":
			fmt.Println(version.Version)
			return 0
		case "--diff":
			if version.Diff == "" {
				fmt.Println("no embedded diff")
			} else {
				fmt.Print(version.Diff)
			}
			return 0
		case "--help", "-h":
			fmt.Print(usage(args[0]))
			return 0
		case "--dry-run", "-d":
			dryRun = true
			if len(args) != 3 {
				fmt.Fprint(os.Stderr, usage(args[0]))
				return 1
			}
			arg = args[2]
		default:
			fmt.Fprint(os.Stderr, usage(args[0]))
			return 1
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return runDaemon(ctx, arg, dryRun)
}

func runDaemon(ctx context.Context, settingsPath string, dryRun bool) int {
	logger := logging.New(logging.DefaultConfig())

	settingsReader, closeSettings, err := openSettings(settingsPath)
	if err != nil {
		return fail(logger, err)
	}
	defer closeSettings()

	settings, err := config.Load(settingsReader)
	if err != nil {
		return fail(logger, err)
	}

	logger, closeLog, err := configureLogger(settings.Log)
	if err != nil {
		return fail(logger, err)
	}
	defer closeLog()

	built, err := config.Build(settings)
	if err != nil {
		return fail(logger, err)
	}

	var banSet kernel.BanSet
	if !dryRun {
		bs, err := kernel.New(kernel.Config{
			Type:    built.NFT.Type,
			Table:   built.NFT.Table,
			IPv4Set: built.NFT.IPv4Set,
			IPv6Set: built.NFT.IPv6Set,
		}, logger)
		if err != nil {
			return fail(logger, err)
		}
		banSet = bs
	}

	engine := scoring.New(built, banSet, dryRun, logger)
	loadState(engine, built.StateFile, logger)

	sup := supervisor.New(built.Processes, logger)
	loop := daemon.New(engine, sup, built.CleanupInterval, built.RestartSleep, logger)

	if err := loop.Run(ctx); err != nil {
		return fail(logger, err)
	}

	if built.StateFile != "" {
		if err := saveState(engine, built.StateFile); err != nil {
			logger.WithError(err).Error("could not write state file")
		}
	}
	return 0
}

func openSettings(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.KindIO, "cannot open %q", path)
	}
	return f, func() { f.Close() }, nil
}

func configureLogger(cfg config.LogSettings) (*logging.Logger, func(), error) {
	logCfg := logging.DefaultConfig()
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	closeFn := func() {}
	if cfg.Filename != "" {
		f, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return logging.New(logging.DefaultConfig()), closeFn, errors.Wrapf(err, errors.KindIO, "cannot open log file %q", cfg.Filename)
		}
		logCfg.Output = f
		closeFn = func() { f.Close() }
	}
	return logging.New(logCfg), closeFn, nil
}

// loadState reads filename into engine, if set. A missing or corrupt
// state file is logged, never fatal -- a daemon starting without any
// prior history is a normal first run, not an error.
func loadState(engine *scoring.Engine, filename string, logger *logging.Logger) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		logger.Error("cannot open state file", "file", filename)
		return
	}
	defer f.Close()

	s, err := state.Load(f)
	if err != nil {
		logger.WithError(err).Error("could not parse state file")
		return
	}
	engine.ReadState(s)
}

func saveState(engine *scoring.Engine, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, errors.KindIO, "cannot create state file %q", filename)
	}
	defer f.Close()
	return state.Save(f, engine.WriteState())
}

// fail logs err at critical severity and returns the runtime-error exit
// code. Every error reaching here, regardless of its Kind, maps to the
// same code: Kind only changes the log message's framing here, not the
// process's exit status -- there is no runtime exit code finer than 255.
func fail(logger *logging.Logger, err error) int {
	if attrs := errors.GetAttributes(err); len(attrs) > 0 {
		logger = logger.WithFields(attrs)
	}
	logger.Critical(err.Error(), "kind", errors.GetKind(err).String())
	return 255
}
