// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-storage/cmd/bureau-storage/cli"
	"github.com/bureau-foundation/bureau-storage/lib/storage"
)

func bucketCommand(env Environment) *cli.Command {
	return &cli.Command{
		Name:    "bucket",
		Summary: "Create, inspect, lock and delete buckets",
		Description: `Manage buckets.

A bucket groups contents under a unique code. Readonly buckets refuse
saves and deletes of their contents. Only empty buckets can be deleted.`,
		Subcommands: []*cli.Command{
			bucketCreateCommand(env),
			bucketGetCommand(env),
			bucketListCommand(env),
			bucketReadonlyCommand(env),
			bucketDeleteCommand(env),
		},
	}
}

func bucketCreateCommand(env Environment) *cli.Command {
	var options commonOptions
	return &cli.Command{
		Name:    "create",
		Summary: "Create buckets (existing codes are left untouched)",
		Usage:   "bureau-storage bucket create <code>... [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			options.addFlags(flagSet)
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Create two buckets", Command: "bureau-storage bucket create invoices receipts"},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return cli.UsageError("at least one bucket code is required")
			}
			return options.withService(ctx, env, func(service *storage.Service) error {
				for _, code := range args {
					if err := service.CreateBucket(ctx, code); err != nil {
						return err
					}
					fmt.Fprintln(env.Stdout, code)
				}
				return nil
			})
		},
	}
}

type bucketGetOptions struct {
	commonOptions
	cli.JSONOutput
}

func bucketGetCommand(env Environment) *cli.Command {
	var options bucketGetOptions
	return &cli.Command{
		Name:    "get",
		Summary: "Show a bucket and its contents",
		Usage:   "bureau-storage bucket get <code> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			options.addFlags(flagSet)
			options.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "bureau-storage bucket get <code>"); err != nil {
				return err
			}
			return options.withService(ctx, env, func(service *storage.Service) error {
				bucket, err := service.GetBucket(ctx, args[0])
				if err != nil {
					return err
				}
				if done, err := options.EmitJSON(env.Stdout, bucket); done {
					return err
				}

				fmt.Fprintf(env.Stdout, "bucket:    %s\n", bucket.Code)
				fmt.Fprintf(env.Stdout, "readonly:  %v\n", bucket.Readonly)
				fmt.Fprintf(env.Stdout, "created:   %s\n", formatTime(bucket.CreatedAt))
				fmt.Fprintf(env.Stdout, "modified:  %s\n", formatTime(bucket.ModifiedAt))
				fmt.Fprintf(env.Stdout, "contents:  %d\n", len(bucket.Contents))
				if len(bucket.Contents) == 0 {
					return nil
				}
				fmt.Fprintln(env.Stdout)
				writer := tabwriter.NewWriter(env.Stdout, 2, 0, 3, ' ', 0)
				fmt.Fprintln(writer, "ID\tNAME\tFORMAT\tSIZE\tCREATED")
				for _, content := range bucket.Contents {
					fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%s\n",
						content.ID, content.Name, content.Format, content.Size, formatTime(content.CreatedAt))
				}
				return writer.Flush()
			})
		},
	}
}

type bucketListOptions struct {
	commonOptions
	cli.JSONOutput
}

func bucketListCommand(env Environment) *cli.Command {
	var options bucketListOptions
	return &cli.Command{
		Name:    "list",
		Summary: "List buckets with content counts",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			options.addFlags(flagSet)
			options.AddJSONFlag(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 0, "bureau-storage bucket list"); err != nil {
				return err
			}
			return options.withService(ctx, env, func(service *storage.Service) error {
				summaries, err := service.ListBuckets(ctx)
				if err != nil {
					return err
				}
				if done, err := options.EmitJSON(env.Stdout, summaries); done {
					return err
				}
				writer := tabwriter.NewWriter(env.Stdout, 2, 0, 3, ' ', 0)
				fmt.Fprintln(writer, "CODE\tCONTENTS\tREADONLY\tMODIFIED")
				for _, summary := range summaries {
					fmt.Fprintf(writer, "%s\t%d\t%v\t%s\n",
						summary.Code, summary.ContentCount, summary.Readonly, formatTime(summary.ModifiedAt))
				}
				return writer.Flush()
			})
		},
	}
}

type bucketReadonlyOptions struct {
	commonOptions
	Off bool
}

func bucketReadonlyCommand(env Environment) *cli.Command {
	var options bucketReadonlyOptions
	return &cli.Command{
		Name:    "readonly",
		Summary: "Mark a bucket readonly (or writable with --off)",
		Usage:   "bureau-storage bucket readonly <code> [--off] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("readonly", pflag.ContinueOnError)
			options.addFlags(flagSet)
			flagSet.BoolVar(&options.Off, "off", false, "clear the readonly flag instead of setting it")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Freeze a bucket", Command: "bureau-storage bucket readonly invoices"},
			{Description: "Unfreeze it", Command: "bureau-storage bucket readonly invoices --off"},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "bureau-storage bucket readonly <code> [--off]"); err != nil {
				return err
			}
			readonly := !options.Off
			return options.withService(ctx, env, func(service *storage.Service) error {
				if err := service.SetBucketReadOnly(ctx, args[0], readonly); err != nil {
					return err
				}
				fmt.Fprintf(env.Stdout, "%s readonly=%v\n", args[0], readonly)
				return nil
			})
		},
	}
}

func bucketDeleteCommand(env Environment) *cli.Command {
	var options commonOptions
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete an empty bucket",
		Usage:   "bureau-storage bucket delete <code> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			options.addFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "bureau-storage bucket delete <code>"); err != nil {
				return err
			}
			return options.withService(ctx, env, func(service *storage.Service) error {
				return service.DeleteBucket(ctx, args[0])
			})
		},
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
