package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
)

var initStart string

var initCmd = &cobra.Command{
	Use:   "init <project>",
	Short: "Create a project ledger",
	Long: `Create an empty ledger for a project. Expected hours are counted from the
start date (default today) on every weekday.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initStart, "start", "", "Start date (YYYY-MM-DD, today, yesterday)")
}

func runInit(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	start, err := parse.Date(initStart, today())
	if err != nil {
		return err
	}

	l, err := storage.Create(cmd.Context(), app.store, project, start)
	if err != nil {
		return storageFailure(err)
	}
	app.logger.Info("project created", "project", project, "start", start)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized project %q starting %s.\n", l.Name(), l.StartDate())
	return nil
}
