// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storj.io/ecpool"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encode FILE...",
		Short: "Encode files into data and parity fragments",
		Long: "Encode every FILE into FILE.data_<i> and FILE.parity_<i> fragments.\n" +
			"All files are encoded concurrently on the pool.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.encode(cmd, args)
		},
	}
}

func (ctx *commandContext) encode(cmd *cobra.Command, paths []string) error {
	contents, err := readFiles(cmd.Context(), paths)
	if err != nil {
		return err
	}

	start := time.Now()
	results := make([]*ecpool.Result[[][]byte], len(paths))
	for i := range paths {
		results[i] = ctx.pool.Encode(cmd.Context(), contents[i])
	}

	for i, path := range paths {
		fragments, err := results[i].Wait(cmd.Context())
		if err != nil {
			return Error.Wrap(fmt.Errorf("encode %q: %w", path, err))
		}
		elapsed := time.Since(start)

		var encodedSize int
		fragmentPaths := make([]string, len(fragments))
		for index, fragment := range fragments {
			encodedSize += len(fragment)
			fragmentPaths[index] = fragmentPath(path, index, ctx.settings.K)
		}
		if err := writeFiles(cmd.Context(), fragmentPaths, fragments); err != nil {
			return err
		}

		ctx.log.Debug("encoded file",
			zap.String("path", path),
			zap.Int("size", len(contents[i])),
			zap.Int("encoded_size", encodedSize))

		ratio := 0.0
		if len(contents[i]) > 0 {
			ratio = float64(encodedSize) / float64(len(contents[i]))
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: encoded %d bytes into %d fragments of %d bytes in %v (ratio %.2f)\n",
			path, len(contents[i]), len(fragments), encodedSize, elapsed, ratio)
	}
	return nil
}
