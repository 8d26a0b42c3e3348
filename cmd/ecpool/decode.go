// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var inputs []string
	var output string

	cmd := &cobra.Command{
		Use:   "decode -i FRAGMENT... [-o OUTPUT]",
		Short: "Decode the original file from fragments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, elapsed, err := ctx.decode(cmd, inputs)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "decoded %d bytes from %d fragments in %v\n", len(data), len(inputs), elapsed)

			if output == "" {
				return nil
			}
			return Error.Wrap(os.WriteFile(output, data, 0o644))
		},
	}
	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "fragment files")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the decoded data to")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (ctx *commandContext) decode(cmd *cobra.Command, inputs []string) ([]byte, time.Duration, error) {
	fragments, err := readFiles(cmd.Context(), inputs)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	data, err := ctx.pool.Decode(cmd.Context(), fragments).Wait(cmd.Context())
	if err != nil {
		return nil, 0, Error.Wrap(fmt.Errorf("decode: %w", err))
	}
	return data, time.Since(start), nil
}
