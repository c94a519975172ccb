package model

import (
	"strings"

	"github.com/Tiliavir/flex/internal/timecalc"
)

// Kind names the variant of an Entry in its persisted form.
type Kind string

const (
	KindDuration Kind = "duration"
	KindPeriod   Kind = "period"
)

// DefaultDescription is shown for entries logged without a description.
const DefaultDescription = "Work"

// Entry is a single unit of logged work. It is implemented only by
// DurationEntry and PeriodEntry.
type Entry interface {
	// Worked returns the effective duration credited to the ledger.
	Worked() timecalc.Duration
	Date() timecalc.Date
	Description() string
	Kind() Kind
	// ExternalID is the identifier of the calendar event an entry was
	// imported from, or "" for entries logged by hand.
	ExternalID() string
	String() string

	sealed()
}

// DurationEntry records a plain amount of work on a day.
type DurationEntry struct {
	duration    timecalc.Duration
	date        timecalc.Date
	description string
}

// NewDurationEntry returns an entry crediting d on date.
func NewDurationEntry(d timecalc.Duration, date timecalc.Date, description string) DurationEntry {
	return DurationEntry{duration: d, date: date, description: description}
}

func (e DurationEntry) Worked() timecalc.Duration { return e.duration }
func (e DurationEntry) Date() timecalc.Date       { return e.date }
func (e DurationEntry) Description() string       { return e.description }
func (e DurationEntry) Kind() Kind                { return KindDuration }
func (DurationEntry) ExternalID() string          { return "" }
func (DurationEntry) sealed()                     {}

// String renders "<date>: <duration>, <description>".
func (e DurationEntry) String() string {
	return e.date.String() + ": " + e.duration.String() + ", " + describe(e.description)
}

// PeriodEntry records work between two clock times, minus breaks. The
// effective duration is computed once at construction.
type PeriodEntry struct {
	period      timecalc.Period
	breaks      []timecalc.Duration
	worked      timecalc.Duration
	date        timecalc.Date
	description string
	externalID  string
}

// NewPeriodEntry returns an entry for period on date. The worked time is the
// period's length minus the sum of breaks and may be negative.
func NewPeriodEntry(period timecalc.Period, date timecalc.Date, description string, breaks []timecalc.Duration) PeriodEntry {
	breaks = append([]timecalc.Duration(nil), breaks...)
	return PeriodEntry{
		period:      period,
		breaks:      breaks,
		worked:      period.Duration().Sub(timecalc.Sum(breaks...)),
		date:        date,
		description: description,
	}
}

// WithExternalID returns a copy of e tagged with the source event id.
func (e PeriodEntry) WithExternalID(id string) PeriodEntry {
	e.externalID = id
	return e
}

func (e PeriodEntry) Worked() timecalc.Duration { return e.worked }
func (e PeriodEntry) Date() timecalc.Date       { return e.date }
func (e PeriodEntry) Description() string       { return e.description }
func (e PeriodEntry) Kind() Kind                { return KindPeriod }
func (e PeriodEntry) ExternalID() string        { return e.externalID }
func (e PeriodEntry) Period() timecalc.Period   { return e.period }
func (PeriodEntry) sealed()                     {}

// Breaks returns a copy of the declared breaks in the order given.
func (e PeriodEntry) Breaks() []timecalc.Duration {
	return append([]timecalc.Duration(nil), e.breaks...)
}

// String renders "<date>: <duration>, <from>-<to>, <description>" followed
// by " | Breaks: b1, b2" when breaks were declared.
func (e PeriodEntry) String() string {
	var b strings.Builder
	b.WriteString(e.date.String())
	b.WriteString(": ")
	b.WriteString(e.worked.String())
	b.WriteString(", ")
	b.WriteString(e.period.String())
	b.WriteString(", ")
	b.WriteString(describe(e.description))
	for i, br := range e.breaks {
		if i == 0 {
			b.WriteString(" | Breaks: ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(br.String())
	}
	return b.String()
}

func describe(s string) string {
	if s == "" {
		return DefaultDescription
	}
	return s
}
