// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the bureau-storage command tree. Every leaf
// command opens the storage service from a config file, performs one
// operation and closes it again; there is no long-running state.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-storage/cmd/bureau-storage/cli"
	"github.com/bureau-foundation/bureau-storage/lib/config"
	"github.com/bureau-foundation/bureau-storage/lib/storage"
	"github.com/bureau-foundation/bureau-storage/lib/version"
)

// Environment is the process surface the commands read from and write
// to. main passes the real streams; tests pass buffers.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewLogger builds the logger for one command invocation. Nil
	// uses cli.NewCommandLogger.
	NewLogger func(verbose bool) *slog.Logger
}

// DefaultEnvironment returns the process's real streams.
func DefaultEnvironment() Environment {
	return Environment{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewLogger: cli.NewCommandLogger,
	}
}

func (e Environment) logger(verbose bool) *slog.Logger {
	if e.NewLogger == nil {
		return cli.NewCommandLogger(verbose)
	}
	return e.NewLogger(verbose)
}

// Root builds the complete bureau-storage command tree.
func Root(env Environment) *cli.Command {
	var showVersion, verbose bool

	return &cli.Command{
		Name: "bureau-storage",
		Description: `bureau-storage: a content repository of buckets and payloads.

Payload bytes live in a blob store (a directory tree, or process memory)
and their metadata in SQLite. Configuration comes from --config, the
BUREAU_STORAGE_CONFIG environment variable, or built-in defaults.`,
		HelpOutput: env.Stderr,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("bureau-storage", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
			flagSet.BoolVarP(&verbose, "verbose", "v", false, "with --version, include toolchain and platform")
			return flagSet
		},
		Subcommands: []*cli.Command{
			bucketCommand(env),
			contentCommand(env),
		},
		Run: func(_ context.Context, args []string) error {
			if !showVersion {
				return cli.UsageError("subcommand required\n\nRun 'bureau-storage --help' for usage.")
			}
			if verbose {
				fmt.Fprintf(env.Stdout, "bureau-storage %s\n", version.Full())
			} else {
				fmt.Fprintf(env.Stdout, "bureau-storage %s\n", version.Info())
			}
			return nil
		},
	}
}

// commonOptions are the flags every leaf command accepts.
type commonOptions struct {
	ConfigPath string
	Verbose    bool
}

func (o *commonOptions) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "",
		"configuration file, YAML or JSONC (default $"+config.EnvironmentVariable+", else built-in defaults)")
	flagSet.BoolVarP(&o.Verbose, "verbose", "v", false, "log at debug level")
}

// loadConfig resolves the configuration: --config, then the
// environment variable, then defaults.
func (o *commonOptions) loadConfig() (*config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		path = os.Getenv(config.EnvironmentVariable)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

// withService opens the storage service, runs fn and closes the
// service. A close failure is returned only when fn succeeded.
func (o *commonOptions) withService(ctx context.Context, env Environment, fn func(*storage.Service) error) (err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	service, err := storage.Open(ctx, cfg, env.logger(o.Verbose))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := service.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing storage: %w", closeErr)
		}
	}()
	return fn(service)
}

// requireArgs returns a usage error unless exactly count positional
// arguments are present.
func requireArgs(args []string, count int, usage string) error {
	if len(args) != count {
		return cli.UsageError("expected %d argument(s), got %d\n\nUsage:\n  %s", count, len(args), usage)
	}
	return nil
}
