// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/bureau-storage/cmd/bureau-storage/cli"
	"github.com/bureau-foundation/bureau-storage/cmd/bureau-storage/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError;
		// don't add a redundant error line for those.
		if _, ok := err.(interface{ ExitCode() int }); !ok {
			fmt.Fprintln(os.Stderr, cli.FormatError(err))
		}
		os.Exit(cli.ExitCodeFor(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(commands.DefaultEnvironment()).Execute(ctx, os.Args[1:])
}
