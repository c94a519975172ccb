package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/model"
	"github.com/Tiliavir/flex/internal/timecalc"
)

var (
	exportFormat string
	exportRange  rangeOptions
)

var exportCmd = &cobra.Command{
	Use:   "export <project>",
	Short: "Export logged entries to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, yaml, md")
	exportRange.register(exportCmd)
}

// exportRow is one entry in export form. Hours are decimal with two places.
type exportRow struct {
	Date         string `json:"date" yaml:"date"`
	Kind         string `json:"kind" yaml:"kind"`
	From         string `json:"from,omitempty" yaml:"from,omitempty"`
	To           string `json:"to,omitempty" yaml:"to,omitempty"`
	BreakMinutes int    `json:"break_minutes" yaml:"break_minutes"`
	Minutes      int    `json:"minutes" yaml:"minutes"`
	Hours        string `json:"hours" yaml:"hours"`
	Description  string `json:"description" yaml:"description"`
	ExternalID   string `json:"external_id,omitempty" yaml:"external_id,omitempty"`
}

type exportDoc struct {
	Project        string      `json:"project" yaml:"project"`
	StartDate      string      `json:"start_date" yaml:"start_date"`
	Today          string      `json:"today" yaml:"today"`
	WorkedHours    string      `json:"worked_hours" yaml:"worked_hours"`
	ExpectedHours  string      `json:"expected_hours" yaml:"expected_hours"`
	BalanceHours   string      `json:"balance_hours" yaml:"balance_hours"`
	BalanceMinutes int         `json:"balance_minutes" yaml:"balance_minutes"`
	Entries        []exportRow `json:"entries" yaml:"entries"`
}

func hours(d timecalc.Duration) string {
	return d.Hours().StringFixed(2)
}

func toRow(e model.Entry) exportRow {
	r := exportRow{
		Date:        e.Date().String(),
		Kind:        string(e.Kind()),
		Minutes:     e.Worked().Minutes(),
		Hours:       hours(e.Worked()),
		Description: e.Description(),
		ExternalID:  e.ExternalID(),
	}
	if p, ok := e.(model.PeriodEntry); ok {
		r.From = p.Period().From.String()
		r.To = p.Period().To.String()
		r.BreakMinutes = timecalc.Sum(p.Breaks()...).Minutes()
	}
	return r
}

func buildExport(l *ledger.Ledger, entries []model.Entry, day timecalc.Date) exportDoc {
	balance := l.FlexBalance(day)
	doc := exportDoc{
		Project:        l.Name(),
		StartDate:      l.StartDate().String(),
		Today:          day.String(),
		WorkedHours:    hours(l.Worked()),
		ExpectedHours:  hours(l.Expected(day)),
		BalanceHours:   hours(balance),
		BalanceMinutes: balance.Minutes(),
		Entries:        make([]exportRow, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, toRow(e))
	}
	return doc
}

func runExport(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	day := today()
	from, to, ranged, err := exportRange.resolve(day)
	if err != nil {
		return err
	}
	l, err := app.store.Load(cmd.Context(), project)
	if err != nil {
		return storageFailure(err)
	}
	entries := l.Entries()
	if ranged {
		entries = l.Between(from, to)
	}
	return writeExport(cmd.OutOrStdout(), exportFormat, buildExport(l, entries, day))
}

func writeExport(w io.Writer, format string, doc exportDoc) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error encoding YAML: %w", err)
		}
		return enc.Close()
	case "md":
		writeMarkdown(w, doc)
	case "csv":
		writeCSV(w, doc.Entries)
	default:
		return fmt.Errorf("unknown export format %q (want csv, json, yaml or md)", format)
	}
	return nil
}

func writeCSV(w io.Writer, rows []exportRow) {
	fmt.Fprintln(w, "date,kind,from,to,break_minutes,minutes,hours,description,external_id")
	for _, r := range rows {
		fmt.Fprintf(w, "%s,%s,%s,%s,%d,%d,%s,%s,%s\n",
			r.Date,
			r.Kind,
			r.From,
			r.To,
			r.BreakMinutes,
			r.Minutes,
			r.Hours,
			csvEscape(r.Description),
			csvEscape(r.ExternalID),
		)
	}
}

func writeMarkdown(w io.Writer, doc exportDoc) {
	fmt.Fprintf(w, "# %s\n\n", doc.Project)
	fmt.Fprintf(w, "Since %s, as of %s: worked %sh, expected %sh, balance %sh.\n\n",
		doc.StartDate, doc.Today, doc.WorkedHours, doc.ExpectedHours, doc.BalanceHours)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "From", "To", "Breaks (min)", "Hours", "Description"})
	total := decimal.Zero
	for _, r := range doc.Entries {
		t.AppendRow(table.Row{r.Date, r.From, r.To, r.BreakMinutes, r.Hours, r.Description})
		total = total.Add(timecalc.Minutes(r.Minutes).Hours())
	}
	t.AppendFooter(table.Row{"Total", "", "", "", total.StringFixed(2), ""})
	t.RenderMarkdown()
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
