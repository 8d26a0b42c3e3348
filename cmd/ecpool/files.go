// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// fragmentPath returns the path of the fragment at index of the file at path.
func fragmentPath(path string, index, dataFragments int) string {
	if index < dataFragments {
		return fmt.Sprintf("%s.data_%d", path, index)
	}
	return fmt.Sprintf("%s.parity_%d", path, index-dataFragments)
}

// readFiles reads all files in parallel.
func readFiles(ctx context.Context, paths []string) ([][]byte, error) {
	contents := make([][]byte, len(paths))

	group, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return Error.Wrap(err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return contents, nil
}

// writeFiles writes contents[i] to paths[i] in parallel.
func writeFiles(ctx context.Context, paths []string, contents [][]byte) error {
	group, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return Error.Wrap(err)
				}
			}
			return Error.Wrap(os.WriteFile(path, contents[i], 0o644))
		})
	}
	return group.Wait()
}
