// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReconstructCommand(ctx *commandContext) *cobra.Command {
	var inputs []string
	var output string
	var index int

	cmd := &cobra.Command{
		Use:   "reconstruct --index N -i FRAGMENT... -o OUTPUT",
		Short: "Rebuild a single lost fragment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fragments, err := readFiles(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			fragment, err := ctx.pool.Reconstruct(cmd.Context(), index, fragments).Wait(cmd.Context())
			if err != nil {
				return Error.Wrap(fmt.Errorf("reconstruct fragment %d: %w", index, err))
			}
			if err := os.WriteFile(output, fragment, 0o644); err != nil {
				return Error.Wrap(err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reconstructed fragment %d (%d bytes) from %d fragments\n", index, len(fragment), len(fragments))
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "index of the fragment to rebuild")
	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "fragment files")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the fragment to")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
