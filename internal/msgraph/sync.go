package msgraph

import (
	"fmt"
	"io"
	"time"

	"github.com/Tiliavir/flex/internal/ledger"
	"github.com/Tiliavir/flex/internal/model"
	"github.com/Tiliavir/flex/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Filtered int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	// Timezone is the IANA zone for Graph times without an offset.
	Timezone string
	DryRun   bool
	// Out receives one progress line per event. Nil discards them.
	Out io.Writer
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	switch {
	case event.IsCancelled, event.IsAllDay:
		return true
	case event.Sensitivity == "private":
		return true
	case event.ShowAs == "free":
		return true
	case event.Start.DateTime == "" || event.End.DateTime == "":
		return true
	}
	return false
}

// MapEventToEntry converts a Graph event into a period entry on the event's
// start day, tagged with the event ID. Events spanning more than one day or
// ending before they start are rejected.
func MapEventToEntry(event CalendarEvent, timezone string) (model.PeriodEntry, error) {
	startTime, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return model.PeriodEntry{}, fmt.Errorf("parsing start time: %w", err)
	}
	endTime, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return model.PeriodEntry{}, fmt.Errorf("parsing end time: %w", err)
	}
	if endTime.Before(startTime) {
		return model.PeriodEntry{}, fmt.Errorf("event ends before it starts")
	}
	if !timecalc.SameDay(startTime, endTime) {
		return model.PeriodEntry{}, fmt.Errorf("event spans several days")
	}

	period := timecalc.NewPeriod(timecalc.ClockOf(startTime), timecalc.ClockOf(endTime))
	entry := model.NewPeriodEntry(period, timecalc.DateOf(startTime), event.Subject, nil)
	return entry.WithExternalID(event.ID), nil
}

// SyncEvents logs every importable event into l. Events already present by
// external ID are skipped, so repeated runs do not duplicate entries. With
// DryRun set, l is left untouched.
func SyncEvents(l *ledger.Ledger, events []CalendarEvent, opts SyncOptions) SyncResult {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	var result SyncResult
	seen := map[string]bool{}
	for _, event := range events {
		if shouldSkip(event) {
			result.Filtered++
			continue
		}
		if l.HasExternalID(event.ID) || seen[event.ID] {
			fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", event.Subject)
			result.Skipped++
			continue
		}

		entry, err := MapEventToEntry(event, opts.Timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		seen[event.ID] = true
		if !opts.DryRun {
			l.Log(entry)
		}
		fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", event.Subject, entry.Worked())
		result.Imported++
	}
	return result
}
