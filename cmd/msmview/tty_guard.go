package main

import (
	"os"
	"strings"
)

// TestModeEnvVar marks non-interactive test runs.
const TestModeEnvVar = "MSMVIEW_TEST_MODE"

// init runs before lipgloss and termenv probe the terminal.
//
// Background-color detection writes OSC/DSR queries to stdout. In a real
// terminal they are invisible, but they corrupt piped output such as
// `msmview info --json`. Setting CI=1 makes termenv skip the probes.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args, os.Getenv(TestModeEnvVar) != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

// shouldSuppressTTYQueries reports whether the invocation never draws the
// interactive view.
func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, "--json") {
			return true
		}
		switch arg {
		case "--version", "--help", "-h", "info", "bundle":
			return true
		}
	}
	return false
}
