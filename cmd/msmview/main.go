// Command msmview is an interactive viewer for Markov-state-model analyses.
//
// Usage:
//
//	msmview [dataset]                  open the linked dashboard in the terminal
//	msmview export -o out.png [dir]    write a static snapshot
//	msmview info [--json] [dir]        summarize a dataset
//	msmview bundle <dir> <out.msm>     pack a dataset into a single SQLite file
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
