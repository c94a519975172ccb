package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/timecalc"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List all projects with their flex balance",
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

func runProjects(cmd *cobra.Command, _ []string) error {
	ledgers, err := loadAll(cmd.Context(), app.store)
	if err != nil {
		return storageFailure(err)
	}
	printProjects(cmd.OutOrStdout(), ledgers, today())
	return nil
}

func printProjects(w io.Writer, ledgers []*ledger.Ledger, day timecalc.Date) {
	if len(ledgers) == 0 {
		fmt.Fprintln(w, "No projects yet. Create one with `flex init <project>`.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Project", "Since", "Entries", "Worked", "Expected", "Flex"})
	for _, l := range ledgers {
		t.AppendRow(table.Row{l.Name(), l.StartDate(), l.Len(), l.Worked(), l.Expected(day), l.FlexBalance(day)})
	}
	t.Render()
}
