// Package ledger keeps the work entries of one project and derives its flex
// balance against an 8 hour weekday baseline.
package ledger

import (
	"encoding/json"

	"github.com/Tiliavir/flex/internal/model"
	"github.com/Tiliavir/flex/internal/timecalc"
)

// HoursPerWeekday is the expected amount of work on every Monday to Friday.
const HoursPerWeekday = 8

// Ledger is the ordered, append-only list of entries of a project together
// with its start date. A Ledger is owned by a single caller at a time.
type Ledger struct {
	name      string
	startDate timecalc.Date
	entries   model.Entries

	// worked caches the sum of entries; valid is cleared on every mutation
	// that cannot update it in place.
	worked timecalc.Duration
	valid  bool
}

// New returns an empty ledger for project name starting on start.
func New(name string, start timecalc.Date) *Ledger {
	return &Ledger{name: name, startDate: start, valid: true}
}

// Init is New guarded by the freshness precondition: exists reports whether
// the persistence layer already holds a ledger for name.
func Init(name string, start timecalc.Date, exists bool) (*Ledger, error) {
	if exists {
		return nil, AlreadyExists(name)
	}
	return New(name, start), nil
}

func (l *Ledger) Name() string             { return l.name }
func (l *Ledger) StartDate() timecalc.Date { return l.startDate }
func (l *Ledger) Len() int                 { return len(l.entries) }

// Entries returns the entries in insertion order. The slice is a copy.
func (l *Ledger) Entries() []model.Entry {
	return append([]model.Entry(nil), l.entries...)
}

// Log appends e. Entries are neither sorted, deduplicated nor checked
// against the start date.
func (l *Ledger) Log(e model.Entry) {
	l.entries = append(l.entries, e)
	if l.valid {
		l.worked = l.worked.Add(e.Worked())
	}
}

// DeleteByDate removes every entry on date, keeping the order of the rest,
// and returns how many were removed.
func (l *Ledger) DeleteByDate(date timecalc.Date) int {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.Date() != date {
			kept = append(kept, e)
		}
	}
	removed := len(l.entries) - len(kept)
	clear(l.entries[len(kept):])
	l.entries = kept
	if removed > 0 {
		l.valid = false
	}
	return removed
}

// Clear removes all entries but keeps the project and its start date.
func (l *Ledger) Clear() {
	l.entries = nil
	l.worked = 0
	l.valid = true
}

// Filter returns the entries for which keep reports true, in order.
func (l *Ledger) Filter(keep func(model.Entry) bool) []model.Entry {
	var out []model.Entry
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Between returns the entries dated within [from, to].
func (l *Ledger) Between(from, to timecalc.Date) []model.Entry {
	return l.Filter(func(e model.Entry) bool {
		d := e.Date()
		return !d.Before(from) && !d.After(to)
	})
}

// HasExternalID reports whether an entry imported from id is present.
func (l *Ledger) HasExternalID(id string) bool {
	if id == "" {
		return false
	}
	for _, e := range l.entries {
		if e.ExternalID() == id {
			return true
		}
	}
	return false
}

// Worked returns the sum of the effective durations of all entries.
func (l *Ledger) Worked() timecalc.Duration {
	if !l.valid {
		ds := make([]timecalc.Duration, len(l.entries))
		for i, e := range l.entries {
			ds[i] = e.Worked()
		}
		l.worked = timecalc.Sum(ds...)
		l.valid = true
	}
	return l.worked
}

// Expected returns the baseline owed from the start date through today.
func (l *Ledger) Expected(today timecalc.Date) timecalc.Duration {
	return timecalc.HM(l.startDate.WeekdaysUntil(today)*HoursPerWeekday, 0)
}

// FlexBalance returns worked minus expected time as of today. A negative
// balance is a deficit.
func (l *Ledger) FlexBalance(today timecalc.Date) timecalc.Duration {
	return l.Worked().Sub(l.Expected(today))
}

type wireLedger struct {
	Name      string        `json:"name"`
	StartDate timecalc.Date `json:"start_date"`
	Entries   model.Entries `json:"entries"`
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	entries := l.entries
	if entries == nil {
		entries = model.Entries{}
	}
	return json.Marshal(wireLedger{Name: l.name, StartDate: l.startDate, Entries: entries})
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var w wireLedger
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*l = Ledger{name: w.Name, startDate: w.StartDate, entries: w.Entries}
	return nil
}
