package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/flex/internal/model"
	"github.com/Tiliavir/flex/internal/parse"
	"github.com/Tiliavir/flex/internal/timecalc"
)

// rangeOptions selects a date range with --week, --month or --from/--to.
// No flag means the whole ledger.
type rangeOptions struct {
	week  bool
	month bool
	from  string
	to    string
}

func (o *rangeOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.week, "week", false, "Only the current ISO week")
	f.BoolVar(&o.month, "month", false, "Only the current month")
	f.StringVar(&o.from, "from", "", "First date (YYYY-MM-DD)")
	f.StringVar(&o.to, "to", "", "Last date (YYYY-MM-DD); defaults to today")
	cmd.MarkFlagsMutuallyExclusive("week", "month", "from")
	cmd.MarkFlagsMutuallyExclusive("week", "month", "to")
}

// resolve returns the inclusive range and whether one was selected at all.
func (o rangeOptions) resolve(today timecalc.Date) (from, to timecalc.Date, ok bool, err error) {
	switch {
	case o.week:
		from, to = timecalc.WeekRange(today)
		return from, to, true, nil
	case o.month:
		from, to = timecalc.MonthRange(today)
		return from, to, true, nil
	case o.from != "" || o.to != "":
		if o.from == "" {
			return from, to, false, errors.New("--from is required when --to is specified")
		}
		if from, err = parse.Date(o.from, today); err != nil {
			return from, to, false, err
		}
		if to, err = parse.Date(o.to, today); err != nil {
			return from, to, false, err
		}
		return from, to, true, nil
	}
	return from, to, false, nil
}

var listRange rangeOptions

var listCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List logged entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listRange.register(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	project, err := projectArg(args)
	if err != nil {
		return err
	}
	day := today()
	from, to, ranged, err := listRange.resolve(day)
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
	out := cmd.OutOrStdout()
	printList(out, entries)
	fmt.Fprintf(out, "Remaining flex time: %s\n", l.FlexBalance(day))
	return nil
}

// entryColumns returns the from, to and breaks cells of e.
func entryColumns(e model.Entry) (from, to, breaks string) {
	p, ok := e.(model.PeriodEntry)
	if !ok {
		return "", "", ""
	}
	var bs []string
	for _, b := range p.Breaks() {
		bs = append(bs, b.String())
	}
	return p.Period().From.String(), p.Period().To.String(), strings.Join(bs, ", ")
}

// newTable returns a table writer mirrored to w. Footers keep their case so
// durations read the same as in the rows.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// printList renders entries as a table with a total footer.
func printList(w io.Writer, entries []model.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "From", "To", "Breaks", "Worked", "Description"})
	var total timecalc.Duration
	for _, e := range entries {
		from, to, breaks := entryColumns(e)
		desc := e.Description()
		if desc == "" {
			desc = model.DefaultDescription
		}
		if e.ExternalID() != "" {
			desc += " (outlook)"
		}
		t.AppendRow(table.Row{e.Date(), from, to, breaks, e.Worked(), desc})
		total = total.Add(e.Worked())
	}
	t.AppendFooter(table.Row{"Total", "", "", "", total, ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}
