package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/storage"
	"github.com/Tiliavir/flex/internal/timecalc"
)

var (
	reportDate   string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show worked time per project for one ISO week",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDate, "week", "", "Any date inside the week to report (default today)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

// reportLine is one project's share of a weekly report. BalanceMinutes is
// the overall flex balance at the week's end or today, whichever is earlier.
type reportLine struct {
	Project        string `json:"project"`
	WorkedMinutes  int    `json:"worked_minutes"`
	BalanceMinutes int    `json:"balance_minutes"`
}

type weekReport struct {
	Week         string       `json:"week"`
	From         string       `json:"from"`
	To           string       `json:"to"`
	Projects     []reportLine `json:"projects"`
	TotalMinutes int          `json:"total_minutes"`
}

func loadAll(ctx context.Context, s storage.Store) ([]*ledger.Ledger, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ledger.Ledger, 0, len(names))
	for _, name := range names {
		l, err := s.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func buildReport(ledgers []*ledger.Ledger, inWeek, day timecalc.Date) weekReport {
	from, to := timecalc.WeekRange(inWeek)
	asOf := to
	if day.Before(asOf) {
		asOf = day
	}
	r := weekReport{
		Week:     timecalc.ISOWeekLabel(inWeek),
		From:     from.String(),
		To:       to.String(),
		Projects: []reportLine{},
	}
	for _, l := range ledgers {
		var worked timecalc.Duration
		for _, e := range l.Between(from, to) {
			worked = worked.Add(e.Worked())
		}
		r.Projects = append(r.Projects, reportLine{
			Project:        l.Name(),
			WorkedMinutes:  worked.Minutes(),
			BalanceMinutes: l.FlexBalance(asOf).Minutes(),
		})
		r.TotalMinutes += worked.Minutes()
	}
	return r
}

func runReport(cmd *cobra.Command, _ []string) error {
	day := today()
	inWeek, err := parse.Date(reportDate, day)
	if err != nil {
		return err
	}
	ledgers, err := loadAll(cmd.Context(), app.store)
	if err != nil {
		return storageFailure(err)
	}
	return writeReport(cmd.OutOrStdout(), reportFormat, buildReport(ledgers, inWeek, day))
}

func writeReport(w io.Writer, format string, r weekReport) error {
	switch format {
	case "csv":
		fmt.Fprintln(w, "project,duration_minutes,balance_minutes")
		for _, p := range r.Projects {
			fmt.Fprintf(w, "%s,%d,%d\n", csvEscape(p.Project), p.WorkedMinutes, p.BalanceMinutes)
		}
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		fmt.Fprintf(w, "Week %s (%s – %s)\n", r.Week, r.From, r.To)
		fmt.Fprintln(w, "--------------------------------")
		for _, p := range r.Projects {
			fmt.Fprintf(w, "%-20s%s\n", p.Project, timecalc.Minutes(p.WorkedMinutes))
		}
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-20s%s\n", "Total", timecalc.Minutes(r.TotalMinutes))
	default:
		return fmt.Errorf("unknown report format %q (want md, csv or json)", format)
	}
	return nil
}
