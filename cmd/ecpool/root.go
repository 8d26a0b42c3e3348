// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storj.io/ecpool"
)

// commandContext carries what the subcommands share.
type commandContext struct {
	configFlag string
	flags      settings

	settings settings
	log      *zap.Logger
	queue    *ecpool.Queue
	pool     *ecpool.Pool
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{flags: defaultSettings()}

	rootCmd := &cobra.Command{
		Use:           "ecpool",
		Short:         "Erasure code files on a pool of workers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.configFlag, "config", "", "TOML file with the coding settings")
	flags.StringVar(&ctx.flags.Codec, "codec", ctx.flags.Codec, "codec to use (reedsolomon, replica)")
	flags.IntVarP(&ctx.flags.K, "data", "k", ctx.flags.K, "number of data fragments")
	flags.IntVarP(&ctx.flags.M, "parity", "m", ctx.flags.M, "number of parity fragments")
	flags.StringVarP(&ctx.flags.Checksum, "checksum", "c", ctx.flags.Checksum, "fragment checksum (none, crc32, md5, blake3)")
	flags.StringVar(&ctx.flags.Compression, "compression", ctx.flags.Compression, "payload compression (none, zstd, lz4)")
	flags.IntVar(&ctx.flags.Workers, "workers", 0, "number of workers, defaults to the number of CPUs")
	flags.BoolVar(&ctx.flags.Verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(newEncodeCommand(ctx))
	rootCmd.AddCommand(newDecodeCommand(ctx))
	rootCmd.AddCommand(newReconstructCommand(ctx))

	return rootCmd
}

// setup resolves the settings and starts the pool. Flags that were set
// explicitly take precedence over the config file.
func (ctx *commandContext) setup(cmd *cobra.Command) (err error) {
	ctx.settings = ctx.flags
	if ctx.configFlag != "" {
		ctx.settings, err = loadSettings(ctx.configFlag)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("codec") {
			ctx.settings.Codec = ctx.flags.Codec
		}
		if flags.Changed("data") {
			ctx.settings.K = ctx.flags.K
		}
		if flags.Changed("parity") {
			ctx.settings.M = ctx.flags.M
		}
		if flags.Changed("checksum") {
			ctx.settings.Checksum = ctx.flags.Checksum
		}
		if flags.Changed("compression") {
			ctx.settings.Compression = ctx.flags.Compression
		}
		if flags.Changed("workers") {
			ctx.settings.Workers = ctx.flags.Workers
		}
		if flags.Changed("verbose") {
			ctx.settings.Verbose = ctx.flags.Verbose
		}
	}

	builder, err := ctx.settings.builder()
	if err != nil {
		return err
	}

	ctx.log, err = ctx.settings.logger()
	if err != nil {
		return err
	}

	ctx.queue = ecpool.NewQueue(ecpool.QueueConfig{
		Workers: ctx.settings.Workers,
		Log:     ctx.log.Named("queue"),
	})
	ctx.pool = ecpool.NewPool(builder, ecpool.Config{
		Queue: ctx.queue,
		Log:   ctx.log.Named("pool"),
	})

	ctx.log.Debug("pool started",
		zap.String("coder_id", builder.CoderID()),
		zap.Int("workers", ctx.queue.Workers()))
	return nil
}

func (ctx *commandContext) teardown() error {
	if ctx.queue == nil {
		return nil
	}
	err := ctx.queue.Close()
	// syncing stderr fails on some terminals.
	_ = ctx.log.Sync()
	return err
}
