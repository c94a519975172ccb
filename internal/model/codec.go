package model

import (
	"encoding/json"
	"fmt"

	"github.com/Tiliavir/flex/internal/timecalc"
)

// wireEntry is the persisted form of both entry variants. Duration holds the
// effective duration; for period entries it is stored, not re-derived.
type wireEntry struct {
	Kind        Kind                `json:"kind"`
	Date        timecalc.Date       `json:"date"`
	Duration    timecalc.Duration   `json:"duration"`
	Period      *timecalc.Period    `json:"period,omitempty"`
	Breaks      []timecalc.Duration `json:"breaks,omitempty"`
	Description string              `json:"description,omitempty"`
	ExternalID  string              `json:"external_id,omitempty"`
}

// Entries is an ordered list of entries that encodes as a JSON array of
// tagged objects.
type Entries []Entry

func (es Entries) MarshalJSON() ([]byte, error) {
	wire := make([]wireEntry, 0, len(es))
	for i, e := range es {
		w, err := toWire(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		wire = append(wire, w)
	}
	return json.Marshal(wire)
}

func (es *Entries) UnmarshalJSON(data []byte) error {
	var wire []wireEntry
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := make(Entries, 0, len(wire))
	for i, w := range wire {
		e, err := fromWire(w)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	*es = out
	return nil
}

// MarshalEntry encodes a single entry in its tagged form.
func MarshalEntry(e Entry) ([]byte, error) {
	w, err := toWire(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalEntry decodes a single tagged entry.
func UnmarshalEntry(data []byte) (Entry, error) {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w)
}

func toWire(e Entry) (wireEntry, error) {
	switch e := e.(type) {
	case DurationEntry:
		return wireEntry{
			Kind:        KindDuration,
			Date:        e.date,
			Duration:    e.duration,
			Description: e.description,
		}, nil
	case PeriodEntry:
		p := e.period
		return wireEntry{
			Kind:        KindPeriod,
			Date:        e.date,
			Duration:    e.worked,
			Period:      &p,
			Breaks:      e.breaks,
			Description: e.description,
			ExternalID:  e.externalID,
		}, nil
	default:
		return wireEntry{}, fmt.Errorf("unsupported entry type %T", e)
	}
}

func fromWire(w wireEntry) (Entry, error) {
	switch w.Kind {
	case KindDuration:
		return DurationEntry{duration: w.Duration, date: w.Date, description: w.Description}, nil
	case KindPeriod:
		if w.Period == nil {
			return nil, fmt.Errorf("period entry on %s has no period", w.Date)
		}
		return PeriodEntry{
			period:      *w.Period,
			breaks:      w.Breaks,
			worked:      w.Duration,
			date:        w.Date,
			description: w.Description,
			externalID:  w.ExternalID,
		}, nil
	default:
		return nil, fmt.Errorf("unknown entry kind %q", w.Kind)
	}
}
