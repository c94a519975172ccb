package model_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/Tiliavir/flex/internal/model"
	"github.com/Tiliavir/flex/internal/timecalc"
)

func nineToFive() timecalc.Period {
	return timecalc.NewPeriod(timecalc.NewClock(9, 0), timecalc.NewClock(17, 0))
}

func TestDurationEntryString(t *testing.T) {
	e := model.NewDurationEntry(timecalc.HM(2, 30), timecalc.NewDate(2024, 1, 2), "Fixed bug")
	want := "2024-01-02: 2 hours and 30 minutes, Fixed bug"
	if got := e.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestDurationEntryDefaultDescription(t *testing.T) {
	e := model.NewDurationEntry(timecalc.HM(1, 0), timecalc.NewDate(2024, 1, 2), "")
	want := "2024-01-02: 1 hour, Work"
	if got := e.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestPeriodEntryWorked(t *testing.T) {
	date := timecalc.NewDate(2024, 1, 3)
	tests := []struct {
		name   string
		breaks []timecalc.Duration
		want   timecalc.Duration
	}{
		{"no breaks", nil, timecalc.HM(8, 0)},
		{"one break", []timecalc.Duration{30}, timecalc.HM(7, 30)},
		{"two breaks", []timecalc.Duration{30, 15}, timecalc.HM(7, 15)},
		{"breaks exceed period", []timecalc.Duration{timecalc.HM(9, 0)}, timecalc.HM(-1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := model.NewPeriodEntry(nineToFive(), date, "", tt.breaks)
			if got := e.Worked(); got != tt.want {
				t.Errorf("Worked = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPeriodEntryString(t *testing.T) {
	date := timecalc.NewDate(2024, 1, 3)
	tests := []struct {
		name  string
		entry model.PeriodEntry
		want  string
	}{
		{
			name:  "without breaks",
			entry: model.NewPeriodEntry(nineToFive(), date, "Review", nil),
			want:  "2024-01-03: 8 hours, 9:00-17:00, Review",
		},
		{
			name:  "with breaks",
			entry: model.NewPeriodEntry(nineToFive(), date, "", []timecalc.Duration{30, 60}),
			want:  "2024-01-03: 6 hours and 30 minutes, 9:00-17:00, Work | Breaks: 30 minutes, 1 hour",
		},
		{
			name:  "negative",
			entry: model.NewPeriodEntry(nineToFive(), date, "Correction", []timecalc.Duration{timecalc.HM(9, 30)}),
			want:  "2024-01-03: -1 hour and 30 minutes, 9:00-17:00, Correction | Breaks: 9 hours and 30 minutes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.String(); got != tt.want {
				t.Errorf("String = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPeriodEntryBreaksAreCopied(t *testing.T) {
	breaks := []timecalc.Duration{30}
	e := model.NewPeriodEntry(nineToFive(), timecalc.NewDate(2024, 1, 3), "", breaks)
	breaks[0] = 120
	if got := e.Breaks(); got[0] != 30 {
		t.Errorf("Breaks()[0] = %d after caller mutation, want 30", got[0])
	}
	if e.Worked() != timecalc.HM(7, 30) {
		t.Errorf("Worked = %d, want 450", e.Worked())
	}
}

func TestEntriesRoundTrip(t *testing.T) {
	in := model.Entries{
		model.NewDurationEntry(timecalc.HM(2, 30), timecalc.NewDate(2024, 1, 2), "Fixed bug"),
		model.NewPeriodEntry(nineToFive(), timecalc.NewDate(2024, 1, 3), "", []timecalc.Duration{30, 15}),
		model.NewPeriodEntry(
			timecalc.NewPeriod(timecalc.NewClock(22, 0), timecalc.NewClock(25, 75)),
			timecalc.NewDate(2024, 2, 31),
			"odd values",
			nil,
		).WithExternalID("evt-1"),
		model.NewDurationEntry(timecalc.Minutes(-45), timecalc.NewDate(2024, 1, 4), ""),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out model.Entries
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in = %v\nout = %v", in, out)
	}
}

func TestEntryStoredDurationIsNotRederived(t *testing.T) {
	raw := `{"kind":"period","date":{"year":2024,"month":1,"day":3},"duration":400,` +
		`"period":{"from":{"hours":9,"minutes":0},"to":{"hours":17,"minutes":0}}}`
	e, err := model.UnmarshalEntry([]byte(raw))
	if err != nil {
		t.Fatalf("UnmarshalEntry: %v", err)
	}
	if e.Worked() != 400 {
		t.Errorf("Worked = %d, want stored 400", e.Worked())
	}
}

func TestMarshalEntryTagsKind(t *testing.T) {
	data, err := model.MarshalEntry(model.NewDurationEntry(60, timecalc.NewDate(2024, 1, 2), "x"))
	if err != nil {
		t.Fatalf("MarshalEntry: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"duration"`) {
		t.Errorf("encoded entry %s has no duration kind tag", data)
	}
}

func TestUnmarshalEntryErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown kind", `{"kind":"sabbatical","duration":10}`},
		{"period without period", `{"kind":"period","duration":10}`},
		{"bad json", `{"kind":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := model.UnmarshalEntry([]byte(tt.raw)); err == nil {
				t.Errorf("UnmarshalEntry(%s) = nil error, want error", tt.raw)
			}
		})
	}
}
