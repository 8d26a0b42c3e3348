// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// go-version-compatibility vets the module for every supported platform.
// The codecs depend on assembly for some architectures, so each of them is
// also vetted with the pure Go fallbacks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"storj.io/common/sync2"
)

func main() {
	parallel := flag.Int("parallel", runtime.GOMAXPROCS(0), "number of compiles to run in parallel")
	compiler := flag.String("compiler", "go", "go toolchain binary")
	packages := flag.String("packages", "storj.io/ecpool/...", "packages to vet")
	flag.Parse()

	ctx := context.Background()

	type testcase struct {
		os   string
		arch string
		tags string
	}

	var tests []testcase
	for _, platform := range []string{
		"linux/amd64", "linux/386", "linux/arm64", "linux/arm",
		"windows/amd64", "windows/arm64",
		"darwin/amd64", "darwin/arm64",
	} {
		goos, goarch, _ := strings.Cut(platform, "/")
		tests = append(tests,
			testcase{os: goos, arch: goarch},
			testcase{os: goos, arch: goarch, tags: "noasm,purego"},
		)
	}

	type result struct {
		title string
		out   string
		err   error
	}
	results := make([]result, len(tests))

	lim := sync2.NewLimiter(*parallel)
	for i, test := range tests {
		lim.Go(ctx, func() {
			args := []string{"vet"}
			if test.tags != "" {
				args = append(args, "-tags", test.tags)
			}
			args = append(args, *packages)

			cmd := exec.Command(*compiler, args...)
			cmd.Env = append(os.Environ(),
				"GOOS="+test.os,
				"GOARCH="+test.arch,
			)

			data, err := cmd.CombinedOutput()
			title := *compiler + "/" + test.os + "/" + test.arch
			if test.tags != "" {
				title += " [" + test.tags + "]"
			}
			results[i] = result{
				title: title,
				out:   strings.TrimSpace(string(data)),
				err:   err,
			}
		})
	}
	lim.Wait()

	exit := 0
	for _, r := range results {
		if r.err == nil {
			fmt.Println("#", r.title, "SUCCESS")
		} else {
			fmt.Println("#", r.title, "FAILED", r.err)
			fmt.Println(r.out)
			fmt.Println()
			exit = 1
		}
	}
	os.Exit(exit)
}
