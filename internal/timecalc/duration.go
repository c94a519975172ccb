package timecalc

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Duration is a signed number of minutes. Negative values represent a
// deficit and are valid everywhere.
type Duration int

// Minutes returns a Duration of m minutes.
func Minutes(m int) Duration { return Duration(m) }

// HM returns hours*60 + minutes. A negative hour count expresses a negative
// duration directly.
func HM(hours, minutes int) Duration { return Duration(hours*60 + minutes) }

// Minutes returns the total minute count.
func (d Duration) Minutes() int { return int(d) }

// Split decomposes d into hours and minutes using truncating division, so
// -90 minutes splits into (-1, -30).
func (d Duration) Split() (hours, minutes int) {
	return int(d) / 60, int(d) % 60
}

func (d Duration) Add(other Duration) Duration { return d + other }
func (d Duration) Sub(other Duration) Duration { return d - other }
func (d Duration) Neg() Duration               { return -d }

func (d Duration) Abs() Duration {
	if d < 0 {
		return -d
	}
	return d
}

func (d Duration) Compare(other Duration) int { return cmp.Compare(d, other) }

func (d Duration) IsZero() bool { return d == 0 }

// Hours returns d as decimal hours, e.g. 90 minutes is 1.5.
func (d Duration) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(decimal.NewFromInt(60))
}

// Sum folds ds with addition starting from zero.
func Sum(ds ...Duration) Duration {
	var total Duration
	for _, d := range ds {
		total += d
	}
	return total
}

// String renders d as e.g. "2 hours and 30 minutes", "1 hour" or
// "45 minutes". Negative durations get a single leading "-" in front of the
// rendering of their absolute value; zero renders as "0 minutes".
func (d Duration) String() string {
	if d == 0 {
		return "0 minutes"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
	}
	hrs, mins := d.Abs().Split()
	if hrs != 0 {
		writeUnit(&b, hrs, "hour")
	}
	if hrs != 0 && mins != 0 {
		b.WriteString(" and ")
	}
	if mins != 0 {
		writeUnit(&b, mins, "minute")
	}
	return b.String()
}

func writeUnit(b *strings.Builder, n int, unit string) {
	fmt.Fprintf(b, "%d %s", n, unit)
	if n != 1 && n != -1 {
		b.WriteByte('s')
	}
}
