// Command corertd hosts a single-threaded corert reactor in a long-lived
// process: a capability-table kernel, the wait-set-driven run loop, and
// the optional Prometheus metrics and Pyroscope profiling surfaces that
// observe them.
package main

import (
	"fmt"
	"os"

	"github.com/coreipc/corert/cmd/corertd/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
