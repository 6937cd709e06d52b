// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-storage/cmd/bureau-storage/cli"
	"github.com/bureau-foundation/bureau-storage/lib/storage"
)

func contentCommand(env Environment) *cli.Command {
	return &cli.Command{
		Name:    "content",
		Summary: "Store, fetch, describe and delete payloads",
		Description: `Manage contents.

A content is a payload plus a name and string attributes, owned by one
bucket and addressed by the id printed when it is stored. Payloads are
encoded with the configured storage.format; each content is read back
with the format it was written in.`,
		Subcommands: []*cli.Command{
			contentPutCommand(env),
			contentGetCommand(env),
			contentDescribeCommand(env),
			contentDeleteCommand(env),
		},
	}
}

type contentPutOptions struct {
	commonOptions
	Name       string
	Attributes map[string]string
}

func contentPutCommand(env Environment) *cli.Command {
	var options contentPutOptions
	return &cli.Command{
		Name:    "put",
		Summary: "Store a file (or stdin) in a bucket and print its id",
		Usage:   "bureau-storage content put <bucket> [file|-] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("put", pflag.ContinueOnError)
			options.addFlags(flagSet)
			flagSet.StringVar(&options.Name, "name", "", "content name (default: the file's base name)")
			flagSet.StringToStringVar(&options.Attributes, "attr", nil, "attribute as key=value (repeatable)")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Store a file with attributes",
				Command:     "bureau-storage content put invoices ./march.pdf --attr customer=acme --attr month=03",
			},
			{
				Description: "Store stdin under an explicit name",
				Command:     "tar c . | bureau-storage content put backups --name site.tar",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return cli.UsageError("expected <bucket> [file|-], got %d argument(s)", len(args))
			}
			bucket := args[0]
			source := "-"
			if len(args) == 2 {
				source = args[1]
			}

			data, err := readSource(env.Stdin, source)
			if err != nil {
				return err
			}
			name := options.Name
			if name == "" && source != "-" {
				name = filepath.Base(source)
			}

			return options.withService(ctx, env, func(service *storage.Service) error {
				contentID, err := service.SaveContent(ctx, bucket, name, options.Attributes, data)
				if err != nil {
					return err
				}
				fmt.Fprintln(env.Stdout, contentID)
				return nil
			})
		},
	}
}

func readSource(stdin io.Reader, source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return data, nil
}

type contentGetOptions struct {
	commonOptions
	Output string
}

func contentGetCommand(env Environment) *cli.Command {
	var options contentGetOptions
	return &cli.Command{
		Name:    "get",
		Summary: "Write a content's payload to stdout or a file",
		Usage:   "bureau-storage content get <id> [--output file] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			options.addFlags(flagSet)
			flagSet.StringVarP(&options.Output, "output", "o", "", "write the payload to this file instead of stdout")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "bureau-storage content get <id> [--output file]"); err != nil {
				return err
			}
			return options.withService(ctx, env, func(service *storage.Service) error {
				content, err := service.GetContent(ctx, args[0])
				if err != nil {
					return err
				}
				if options.Output == "" || options.Output == "-" {
					_, err := env.Stdout.Write(content.Data)
					return err
				}
				if err := os.WriteFile(options.Output, content.Data, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", options.Output, err)
				}
				return nil
			})
		},
	}
}

type contentDescribeOptions struct {
	commonOptions
	cli.JSONOutput
}

func contentDescribeCommand(env Environment) *cli.Command {
	var options contentDescribeOptions
	return &cli.Command{
		Name:    "describe",
		Summary: "Show a content's metadata without reading its payload",
		Usage:   "bureau-storage content describe <id> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("describe", pflag.ContinueOnError)
			options.addFlags(flagSet)
			options.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "bureau-storage content describe <id>"); err != nil {
				return err
			}
			return options.withService(ctx, env, func(service *storage.Service) error {
				description, err := service.GetContentDescription(ctx, args[0])
				if err != nil {
					return err
				}
				if done, err := options.EmitJSON(env.Stdout, description); done {
					return err
				}

				fmt.Fprintf(env.Stdout, "id:        %s\n", description.ID)
				fmt.Fprintf(env.Stdout, "name:      %s\n", description.Name)
				fmt.Fprintf(env.Stdout, "format:    %s\n", description.Format)
				fmt.Fprintf(env.Stdout, "size:      %d\n", description.Size)
				fmt.Fprintf(env.Stdout, "created:   %s\n", formatTime(description.CreatedAt))
				fmt.Fprintf(env.Stdout, "modified:  %s\n", formatTime(description.ModifiedAt))
				if len(description.Attributes) == 0 {
					return nil
				}
				keys := make([]string, 0, len(description.Attributes))
				for key := range description.Attributes {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				fmt.Fprintln(env.Stdout, "attributes:")
				for _, key := range keys {
					fmt.Fprintf(env.Stdout, "  %s=%s\n", key, description.Attributes[key])
				}
				return nil
			})
		},
	}
}

func contentDeleteCommand(env Environment) *cli.Command {
	var options commonOptions
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a content and its payload",
		Usage:   "bureau-storage content delete <id> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			options.addFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "bureau-storage content delete <id>"); err != nil {
				return err
			}
			return options.withService(ctx, env, func(service *storage.Service) error {
				return service.DeleteContent(ctx, args[0])
			})
		},
	}
}
