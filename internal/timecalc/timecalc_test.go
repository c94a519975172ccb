package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/flex/internal/timecalc"
)

func TestDurationString(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0 minutes"},
		{1, "1 minute"},
		{45, "45 minutes"},
		{60, "1 hour"},
		{61, "1 hour and 1 minute"},
		{150, "2 hours and 30 minutes"},
		{480, "8 hours"},
		{-1, "-1 minute"},
		{-30, "-30 minutes"},
		{-90, "-1 hour and 30 minutes"},
		{-120, "-2 hours"},
	}
	for _, tt := range tests {
		got := timecalc.Minutes(tt.minutes).String()
		if got != tt.want {
			t.Errorf("Minutes(%d).String() = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestDurationSplitRoundTrip(t *testing.T) {
	for h := 0; h < 30; h++ {
		for m := 0; m < 60; m++ {
			gotH, gotM := timecalc.HM(h, m).Split()
			if gotH != h || gotM != m {
				t.Fatalf("HM(%d, %d).Split() = (%d, %d)", h, m, gotH, gotM)
			}
		}
	}
}

func TestDurationSplitNegativeTruncates(t *testing.T) {
	h, m := timecalc.Minutes(-90).Split()
	if h != -1 || m != -30 {
		t.Errorf("Minutes(-90).Split() = (%d, %d), want (-1, -30)", h, m)
	}
	if got := timecalc.HM(-2, 0); got != timecalc.Minutes(-120) {
		t.Errorf("HM(-2, 0) = %d, want -120", got)
	}
}

func TestDurationArithmetic(t *testing.T) {
	values := []timecalc.Duration{-600, -90, -1, 0, 1, 45, 480, 10000}
	for _, a := range values {
		for _, b := range values {
			if got := a.Add(b).Sub(b); got != a {
				t.Errorf("(%d + %d) - %d = %d", a, b, b, got)
			}
			if a.Add(b) != b.Add(a) {
				t.Errorf("%d + %d is not commutative", a, b)
			}
			for _, c := range values {
				if a.Add(b).Add(c) != a.Add(b.Add(c)) {
					t.Errorf("(%d + %d) + %d is not associative", a, b, c)
				}
			}
		}
	}
}

func TestSum(t *testing.T) {
	if got := timecalc.Sum(); got != timecalc.Minutes(0) {
		t.Errorf("Sum() = %d, want 0", got)
	}
	if got := timecalc.Sum(timecalc.HM(1, 0), timecalc.Minutes(30), timecalc.Minutes(-15)); got != 75 {
		t.Errorf("Sum = %d, want 75", got)
	}
}

func TestDurationCompare(t *testing.T) {
	if timecalc.Minutes(-90).Compare(timecalc.Minutes(-30)) != -1 {
		t.Error("expected -90 < -30")
	}
	if timecalc.Minutes(5).Compare(timecalc.Minutes(5)) != 0 {
		t.Error("expected 5 == 5")
	}
}

func TestDurationHours(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{90, "1.50"},
		{450, "7.50"},
		{20, "0.33"},
		{-120, "-2.00"},
	}
	for _, tt := range tests {
		got := timecalc.Minutes(tt.minutes).Hours().StringFixed(2)
		if got != tt.want {
			t.Errorf("Minutes(%d).Hours() = %s, want %s", tt.minutes, got, tt.want)
		}
	}
}

func TestClockSince(t *testing.T) {
	tests := []struct {
		from, to timecalc.Clock
		want     timecalc.Duration
	}{
		{timecalc.NewClock(9, 0), timecalc.NewClock(17, 0), timecalc.HM(8, 0)},
		{timecalc.NewClock(9, 45), timecalc.NewClock(10, 15), timecalc.Minutes(30)},
		{timecalc.NewClock(17, 0), timecalc.NewClock(9, 0), timecalc.HM(-8, 0)},
		{timecalc.NewClock(22, 0), timecalc.NewClock(1, 0), timecalc.HM(-21, 0)},
		{timecalc.NewClock(0, 0), timecalc.NewClock(25, 10), timecalc.HM(25, 10)},
	}
	for _, tt := range tests {
		got := tt.to.Since(tt.from)
		if got != tt.want {
			t.Errorf("%s.Since(%s) = %d, want %d", tt.to, tt.from, got, tt.want)
		}
	}
}

func TestClockCompareAndString(t *testing.T) {
	if timecalc.NewClock(9, 59).Compare(timecalc.NewClock(10, 0)) != -1 {
		t.Error("expected 9:59 < 10:00")
	}
	if got := timecalc.NewClock(9, 5).String(); got != "9:05" {
		t.Errorf("String = %q, want %q", got, "9:05")
	}
}

func TestPeriodDuration(t *testing.T) {
	p := timecalc.NewPeriod(timecalc.NewClock(9, 0), timecalc.NewClock(17, 0))
	if got := p.Duration(); got != timecalc.HM(8, 0) {
		t.Errorf("Duration = %d, want 480", got)
	}
	if got := p.Duration().Sub(timecalc.Minutes(30)); got != timecalc.HM(7, 30) {
		t.Errorf("Duration minus break = %d, want 450", got)
	}
	if got := p.String(); got != "9:00-17:00" {
		t.Errorf("String = %q, want %q", got, "9:00-17:00")
	}
}

func TestStartOfMonth(t *testing.T) {
	got := timecalc.NewDate(2024, 3, 15).StartOfMonth()
	if got != timecalc.NewDate(2024, 3, 1) {
		t.Errorf("StartOfMonth = %s, want 2024-03-01", got)
	}
}

func TestDateCompare(t *testing.T) {
	a := timecalc.NewDate(2023, 12, 31)
	b := timecalc.NewDate(2024, 1, 1)
	c := timecalc.NewDate(2024, 1, 2)
	if !a.Before(b) || !b.Before(c) || !c.After(a) {
		t.Error("expected 2023-12-31 < 2024-01-01 < 2024-01-02")
	}
	if b.Compare(timecalc.NewDate(2024, 1, 1)) != 0 {
		t.Error("expected equal dates to compare 0")
	}
	if timecalc.NewDate(2024, 2, 1).Compare(timecalc.NewDate(2024, 1, 31)) != 1 {
		t.Error("expected month to dominate day")
	}
}

func TestDateString(t *testing.T) {
	if got := timecalc.NewDate(2024, 1, 2).String(); got != "2024-01-02" {
		t.Errorf("String = %q, want %q", got, "2024-01-02")
	}
}

func TestWeekdaysUntil(t *testing.T) {
	tests := []struct {
		name     string
		from, to timecalc.Date
		want     int
	}{
		// 2024-01-01 is a Monday.
		{"mon-fri", timecalc.NewDate(2024, 1, 1), timecalc.NewDate(2024, 1, 5), 5},
		{"same weekday", timecalc.NewDate(2024, 1, 3), timecalc.NewDate(2024, 1, 3), 1},
		{"same saturday", timecalc.NewDate(2024, 1, 6), timecalc.NewDate(2024, 1, 6), 0},
		{"weekend only", timecalc.NewDate(2024, 1, 6), timecalc.NewDate(2024, 1, 7), 0},
		{"two weeks", timecalc.NewDate(2024, 1, 1), timecalc.NewDate(2024, 1, 14), 10},
		{"month boundary", timecalc.NewDate(2024, 1, 29), timecalc.NewDate(2024, 2, 2), 5},
		{"leap day", timecalc.NewDate(2024, 2, 28), timecalc.NewDate(2024, 3, 1), 3},
		{"year boundary", timecalc.NewDate(2023, 12, 29), timecalc.NewDate(2024, 1, 2), 3},
		{"reversed", timecalc.NewDate(2024, 1, 5), timecalc.NewDate(2024, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.WeekdaysUntil(tt.to); got != tt.want {
				t.Errorf("%s.WeekdaysUntil(%s) = %d, want %d", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestWeekdaysUntilFullWeek(t *testing.T) {
	start := timecalc.NewDate(2024, 1, 1)
	for i := 0; i < 7; i++ {
		from := start.AddDays(i)
		if got := from.WeekdaysUntil(from.AddDays(6)); got != 5 {
			t.Errorf("week starting %s (%s) = %d weekdays, want 5", from, from.Weekday(), got)
		}
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	monday, sunday := timecalc.WeekRange(timecalc.NewDate(2026, 2, 27))
	if monday != timecalc.NewDate(2026, 2, 23) {
		t.Errorf("WeekRange monday = %s, want 2026-02-23", monday)
	}
	if sunday != timecalc.NewDate(2026, 3, 1) {
		t.Errorf("WeekRange sunday = %s, want 2026-03-01", sunday)
	}
}

func TestMonthRange(t *testing.T) {
	first, last := timecalc.MonthRange(timecalc.NewDate(2024, 2, 17))
	if first != timecalc.NewDate(2024, 2, 1) || last != timecalc.NewDate(2024, 2, 29) {
		t.Errorf("MonthRange = %s..%s, want 2024-02-01..2024-02-29", first, last)
	}
}

func TestISOWeekLabel(t *testing.T) {
	got := timecalc.ISOWeekLabel(timecalc.NewDate(2026, 2, 27))
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2026, 2, 27, 23, 59, 0, 0, time.UTC)
	if got := timecalc.DateOf(ts); got != timecalc.NewDate(2026, 2, 27) {
		t.Errorf("DateOf = %s, want 2026-02-27", got)
	}
	if got := timecalc.ClockOf(ts); got != timecalc.NewClock(23, 59) {
		t.Errorf("ClockOf = %s, want 23:59", got)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}
