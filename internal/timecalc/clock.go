package timecalc

import (
	"cmp"
	"fmt"
)

// Clock is a wall-clock time of day. Hours and minutes are not normalised;
// values past 23:59 are kept as given.
type Clock struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// NewClock returns the clock time hours:minutes.
func NewClock(hours, minutes int) Clock {
	return Clock{Hours: hours, Minutes: minutes}
}

// Since returns c minus earlier as a signed Duration. It does not wrap around
// midnight: a clock time before earlier yields a negative Duration.
func (c Clock) Since(earlier Clock) Duration {
	return HM(c.Hours-earlier.Hours, c.Minutes-earlier.Minutes)
}

// Compare orders clock times by hours, then minutes.
func (c Clock) Compare(other Clock) int {
	if r := cmp.Compare(c.Hours, other.Hours); r != 0 {
		return r
	}
	return cmp.Compare(c.Minutes, other.Minutes)
}

func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d", c.Hours, c.Minutes)
}

// Period is a from/to pair of clock times on one day.
type Period struct {
	From Clock `json:"from"`
	To   Clock `json:"to"`
}

// NewPeriod stores both endpoints verbatim; to is not required to be after from.
func NewPeriod(from, to Clock) Period {
	return Period{From: from, To: to}
}

// Duration returns the elapsed time from p.From to p.To, negative when To is
// earlier than From.
func (p Period) Duration() Duration {
	return p.To.Since(p.From)
}

func (p Period) String() string {
	return p.From.String() + "-" + p.To.String()
}
