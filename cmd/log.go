package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/model"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
	"github.com/Tiliavir/flex/internal/timecalc"
)

// logOptions are the raw flag values of `flex log`.
type logOptions struct {
	duration    string
	from        string
	to          string
	breaks      []string
	date        string
	description string
}

var logOpts logOptions

var logCmd = &cobra.Command{
	Use:   "log <project>",
	Short: "Log worked time",
	Long: `Log worked time either as a plain duration or as a from/to period with
optional breaks:

  flex log acme --duration 2h30m -d "Fixed bug"
  flex log acme --from 8:30 --to 17:00 --break 30m --date yesterday`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

func init() {
	f := logCmd.Flags()
	f.StringVar(&logOpts.duration, "duration", "", "Worked duration (2h30m, 2:30 or minutes)")
	f.StringVar(&logOpts.from, "from", "", "Start time (H:MM)")
	f.StringVar(&logOpts.to, "to", "", "End time (H:MM)")
	f.StringArrayVar(&logOpts.breaks, "break", nil, "Break duration, repeatable")
	f.StringVar(&logOpts.date, "date", "", "Date (YYYY-MM-DD, today, yesterday)")
	f.StringVarP(&logOpts.description, "description", "d", "", "What was worked on")

	logCmd.MarkFlagsMutuallyExclusive("duration", "from")
	logCmd.MarkFlagsMutuallyExclusive("duration", "to")
	logCmd.MarkFlagsMutuallyExclusive("duration", "break")
	logCmd.MarkFlagsRequiredTogether("from", "to")
	logCmd.MarkFlagsOneRequired("duration", "from")
}

// entry builds the entry described by o.
func (o logOptions) entry(today timecalc.Date) (model.Entry, error) {
	date, err := parse.Date(o.date, today)
	if err != nil {
		return nil, err
	}
	switch {
	case o.duration != "" && o.from == "" && o.to == "" && len(o.breaks) == 0:
		d, err := parse.Duration(o.duration)
		if err != nil {
			return nil, err
		}
		return model.NewDurationEntry(d, date, o.description), nil
	case o.duration == "" && o.from != "" && o.to != "":
		from, err := parse.Clock(o.from)
		if err != nil {
			return nil, err
		}
		to, err := parse.Clock(o.to)
		if err != nil {
			return nil, err
		}
		breaks, err := parse.Durations(o.breaks)
		if err != nil {
			return nil, err
		}
		return model.NewPeriodEntry(timecalc.NewPeriod(from, to), date, o.description, breaks), nil
	default:
		return nil, errors.New("give either --duration or --from and --to (breaks only with a period)")
	}
}

func runLog(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	now := today()
	entry, err := logOpts.entry(now)
	if err != nil {
		return err
	}

	l, err := storage.Update(cmd.Context(), app.store, project, func(l *ledger.Ledger) error {
		l.Log(entry)
		return nil
	})
	if err != nil {
		return storageFailure(err)
	}
	app.logger.Debug("entry logged", "project", project, "kind", entry.Kind(), "minutes", entry.Worked().Minutes())
	printLogged(cmd.OutOrStdout(), entry, l.FlexBalance(now))
	return nil
}

func printLogged(w io.Writer, e model.Entry, balance timecalc.Duration) {
	fmt.Fprintln(w, "Work logged:")
	fmt.Fprintln(w, e)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Remaining flex time: %s\n", balance)
}
