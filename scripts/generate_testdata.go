//go:build ignore
// +build ignore

// generate_testdata.go writes synthetic Markov-state-model datasets for
// manual testing and benchmarking.
// Usage: go run scripts/generate_testdata.go [output-dir]
//
// Creates (under testdata/datasets by default):
//
//	small/    32 x 24 grid
//	medium/   128 x 96 grid, jittered wells
//	large/    400 x 300 grid, jittered wells, masked edge
//	large.msm the large dataset as a SQLite bundle
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/msmview/internal/datasource"
	"github.com/vanderheijden86/msmview/pkg/testutil"
)

type datasetSpec struct {
	name       string
	cols, rows int
	seed       int64
	mask       bool
}

var datasets = []datasetSpec{
	{"small", 32, 24, 0, false},
	{"medium", 128, 96, 42, false},
	{"large", 400, 300, 7, true},
}

func main() {
	outputDir := "testdata/datasets"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	var last string
	for _, spec := range datasets {
		fmt.Printf("Generating %s dataset (%dx%d)...\n", spec.name, spec.cols, spec.rows)

		cfg := testutil.DefaultConfig()
		cfg.Cols, cfg.Rows = spec.cols, spec.rows
		cfg.Seed = spec.seed
		cfg.MaskEdge = spec.mask
		cfg.ImageSize = 64

		ds := testutil.New(cfg).Dataset()
		ds.Name = spec.name

		dir := filepath.Join(outputDir, spec.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", dir, err)
			os.Exit(1)
		}
		if err := testutil.WriteDir(dir, ds); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dir, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s\n", dir)
		last = spec.name

		if spec.name == "large" {
			bundle := filepath.Join(outputDir, "large.msm")
			if err := datasource.WriteBundle(context.Background(), ds, bundle); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", bundle, err)
				os.Exit(1)
			}
			fmt.Printf("  Written %s\n", bundle)
		}
	}

	fmt.Printf("\nDone! Try: msmview %s\n", filepath.Join(outputDir, last))
}
