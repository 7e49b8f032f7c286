package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreipc/corert/internal/cli/output"
	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel/simkernel"
	"github.com/coreipc/corert/pkg/reactor"
)

var diagnosticsOutput string

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "Dump a reactor's registered handlers",
	Long: `Construct a short-lived kernel and reactor, register a small set of
demo handlers against it, and print a table of what the reactor's wait
set currently holds.

This is a standalone demonstration of the handler-table/wait-set
introspection surface a reactor exposes (Reactor.Snapshot) — it does not
attach to an already-running corertd serve process, which has no remote
introspection protocol defined.`,
	RunE: runDiagnostics,
}

func init() {
	diagnosticsCmd.Flags().StringVarP(&diagnosticsOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// handlerTable adapts a []reactor.HandlerSnapshot to output.TableRenderer.
type handlerTable []reactor.HandlerSnapshot

func (t handlerTable) Headers() []string {
	return []string{"ID", "HANDLE", "SIGNALS", "DEADLINE"}
}

func (t handlerTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, h := range t {
		deadline := "forever"
		if !h.Deadline.IsZero() {
			deadline = h.Deadline.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.FormatUint(h.ID, 10),
			strconv.FormatUint(uint64(h.Handle), 10),
			strconv.FormatUint(uint64(h.Signals), 2),
			deadline,
		})
	}
	return rows
}

func runDiagnostics(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(diagnosticsOutput)
	if err != nil {
		return err
	}

	k := simkernel.New()
	rx, err := reactor.New(k)
	if err != nil {
		return fmt.Errorf("failed to construct reactor: %w", err)
	}
	defer func() { _ = rx.Close() }()

	for i := 0; i < 3; i++ {
		ends, st := k.MessagePipeCreate()
		if st != nil {
			return fmt.Errorf("failed to create demo pipe: %w", st)
		}
		if _, err := rx.AddHandler(reactor.HandlerFunc{}, ends.H0, khandle.SignalReadable, reactor.Forever); err != nil {
			return fmt.Errorf("failed to register demo handler: %w", err)
		}
	}

	table := handlerTable(rx.Snapshot())

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, []reactor.HandlerSnapshot(table))
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, []reactor.HandlerSnapshot(table))
	default:
		return output.PrintTable(os.Stdout, table)
	}
}
