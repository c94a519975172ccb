package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/msgraph"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
	"github.com/Tiliavir/flex/internal/timecalc"
)

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncDryRun bool
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync <project>",
	Short: "Log Outlook calendar events as period entries",
	Long: `Fetch calendar events through Microsoft Graph and log each one as a
from/to entry. Cancelled, all-day, private, free and multi-day events are
skipped, and events imported before are not logged again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutlookSync,
}

func init() {
	f := outlookSyncCmd.Flags()
	f.StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	f.StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	f.StringVar(&outlookSyncDate, "date", "", "Sync a specific date (default today)")
	f.BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	f.StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default [outlook] timezone)")
	outlookSyncCmd.MarkFlagsMutuallyExclusive("date", "from")
	outlookSyncCmd.MarkFlagsMutuallyExclusive("date", "to")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncWindow returns the local-time window [from, to] to fetch.
func syncWindow(date, fromS, toS string, day timecalc.Date) (time.Time, time.Time, error) {
	switch {
	case fromS != "" || toS != "":
		if fromS == "" {
			return time.Time{}, time.Time{}, errors.New("--from is required when --to is specified")
		}
		from, err := parse.Date(fromS, day)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to, err := parse.Date(toS, day)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return timecalc.StartOfDay(localTime(from)), timecalc.EndOfDay(localTime(to)), nil
	default:
		d, err := parse.Date(date, day)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return timecalc.StartOfDay(localTime(d)), timecalc.EndOfDay(localTime(d)), nil
	}
}

func localTime(d timecalc.Date) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	from, to, err := syncWindow(outlookSyncDate, outlookSyncFrom, outlookSyncTo, today())
	if err != nil {
		return err
	}
	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = app.cfg.Outlook.Timezone
	}

	ctx := cmd.Context()
	// Fail before authenticating if the project does not exist.
	if _, err := app.store.Load(ctx, project); err != nil {
		return storageFailure(err)
	}

	out := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook events (%s → %s)%s...\n\n",
		from.Format("2006-01-02"), to.Format("2006-01-02"), dryTag)

	auth := &msgraph.Auth{
		TenantID: app.cfg.Outlook.TenantID,
		ClientID: app.cfg.Outlook.ClientID,
		Dir:      filepath.Join(app.dataDir, "auth"),
		Prompt:   out,
		Logger:   app.logger,
	}
	tok, oauthCfg, err := auth.Token(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	client := msgraph.NewClient(ctx, auth, tok, oauthCfg)

	events, err := client.GetCalendarView(ctx, from, to, timezone)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}
	app.logger.Debug("calendar events fetched", "count", len(events))

	opts := msgraph.SyncOptions{Timezone: timezone, DryRun: outlookSyncDryRun, Out: out}
	l, result, err := syncProject(ctx, app.store, project, events, opts)
	if err != nil {
		return storageFailure(err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d imported\n", result.Imported)
	fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
	fmt.Fprintf(out, "  %d filtered\n", result.Filtered)
	if result.Errors > 0 {
		fmt.Fprintf(out, "  %d errors\n", result.Errors)
	}
	fmt.Fprintf(out, "\nRemaining flex time: %s\n", l.FlexBalance(today()))
	if result.Errors > 0 {
		return &exitError{code: 2, err: fmt.Errorf("%d events could not be imported", result.Errors)}
	}
	return nil
}

// syncProject logs events into the project's ledger and saves it. A dry run
// only loads the ledger and leaves the store untouched.
func syncProject(ctx context.Context, s storage.Store, project string, events []msgraph.CalendarEvent, opts msgraph.SyncOptions) (*ledger.Ledger, msgraph.SyncResult, error) {
	var result msgraph.SyncResult
	if opts.DryRun {
		l, err := s.Load(ctx, project)
		if err != nil {
			return nil, result, err
		}
		return l, msgraph.SyncEvents(l, events, opts), nil
	}
	l, err := storage.Update(ctx, s, project, func(l *ledger.Ledger) error {
		result = msgraph.SyncEvents(l, events, opts)
		return nil
	})
	return l, result, err
}
