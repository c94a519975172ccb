package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status <project>",
	Short: "Show worked and expected time and the flex balance",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	l, err := app.store.Load(cmd.Context(), project)
	if err != nil {
		return storageFailure(err)
	}
	printStatus(cmd.OutOrStdout(), l, today())
	return nil
}

func printStatus(w io.Writer, l *ledger.Ledger, day timecalc.Date) {
	fmt.Fprintf(w, "Project: %s (since %s)\n", l.Name(), l.StartDate())
	fmt.Fprintf(w, "  Entries:  %d\n", l.Len())
	fmt.Fprintf(w, "  Worked:   %s\n", l.Worked())
	fmt.Fprintf(w, "  Expected: %s\n", l.Expected(day))
	fmt.Fprintf(w, "Remaining flex time: %s\n", l.FlexBalance(day))
}
