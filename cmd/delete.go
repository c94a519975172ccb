package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
)

var deleteDate string

var deleteCmd = &cobra.Command{
	Use:   "delete <project> --date DATE",
	Short: "Delete all entries logged on a date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDelete,
}

var wipeCmd = &cobra.Command{
	Use:   "wipe <project>",
	Short: "Delete a project and its ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWipe,
}

var clearCmd = &cobra.Command{
	Use:   "clear <project>",
	Short: "Remove all entries but keep the project and its start date",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClear,
}

func init() {
	deleteCmd.Flags().StringVar(&deleteDate, "date", "", "Date whose entries are removed (YYYY-MM-DD, today, yesterday)")
	_ = deleteCmd.MarkFlagRequired("date")
}

func runDelete(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	date, err := parse.Date(deleteDate, today())
	if err != nil {
		return err
	}

	var removed int
	_, err = storage.Update(cmd.Context(), app.store, project, func(l *ledger.Ledger) error {
		removed = l.DeleteByDate(date)
		return nil
	})
	if err != nil {
		return storageFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s on %s.\n", removed, plural(removed, "entry", "entries"), date)
	return nil
}

func runWipe(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	if err := app.store.Delete(cmd.Context(), project); err != nil {
		return storageFailure(err)
	}
	app.logger.Info("project wiped", "project", project)
	fmt.Fprintf(cmd.OutOrStdout(), "Project %q deleted.\n", project)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	var removed int
	_, err = storage.Update(cmd.Context(), app.store, project, func(l *ledger.Ledger) error {
		removed = l.Len()
		l.Clear()
		return nil
	})
	if err != nil {
		return storageFailure(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s from %q.\n", removed, plural(removed, "entry", "entries"), project)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
