// Package parse turns command-line and request text into timecalc values.
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/flex/internal/timecalc"
)

// ErrInvalid is wrapped by every parse failure.
var ErrInvalid = errors.New("invalid value")

func invalid(kind, s string, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrInvalid, kind, s, reason)
}

// Date parses "today", "yesterday" or YYYY-MM-DD with exactly four, two and
// two unsigned digits. Only a soft bound check is applied: month 1-12 and
// day 1-31.
func Date(s string, today timecalc.Date) (timecalc.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return timecalc.Date{}, invalid("date", s, "want YYYY-MM-DD")
	}
	var ymd [3]int
	for i, p := range parts {
		if strings.Trim(p, "0123456789") != "" {
			return timecalc.Date{}, invalid("date", s, "want YYYY-MM-DD")
		}
		ymd[i], _ = strconv.Atoi(p)
	}
	if ymd[1] < 1 || ymd[1] > 12 {
		return timecalc.Date{}, invalid("date", s, "month out of range")
	}
	if ymd[2] < 1 || ymd[2] > 31 {
		return timecalc.Date{}, invalid("date", s, "day out of range")
	}
	return timecalc.NewDate(ymd[0], ymd[1], ymd[2]), nil
}

// Clock parses H:MM, HH:MM or HHMM.
func Clock(s string) (timecalc.Clock, error) {
	s = strings.TrimSpace(s)
	hs, ms, ok := strings.Cut(s, ":")
	if !ok {
		if len(s) != 4 {
			return timecalc.Clock{}, invalid("time", s, "want HH:MM")
		}
		hs, ms = s[:2], s[2:]
	}
	if hs == "" || len(ms) != 2 {
		return timecalc.Clock{}, invalid("time", s, "want HH:MM")
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 {
		return timecalc.Clock{}, invalid("time", s, "bad hour")
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return timecalc.Clock{}, invalid("time", s, "bad minute")
	}
	return timecalc.NewClock(h, m), nil
}

// Duration parses a non-negative whole-minute duration written as Go
// duration syntax ("2h30m", "45m"), as H:MM ("1:30") or as bare minutes ("90").
func Duration(s string) (timecalc.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalid("duration", s, "empty")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, invalid("duration", s, "negative")
		}
		return timecalc.Minutes(n), nil
	}
	if strings.Contains(s, ":") {
		c, err := Clock(s)
		if err != nil {
			return 0, invalid("duration", s, "want H:MM")
		}
		return timecalc.HM(c.Hours, c.Minutes), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, invalid("duration", s, "want e.g. 2h30m")
	}
	if d < 0 {
		return 0, invalid("duration", s, "negative")
	}
	if d%time.Minute != 0 {
		return 0, invalid("duration", s, "sub-minute precision")
	}
	return timecalc.Minutes(int(d / time.Minute)), nil
}

// Durations parses each element of ss with Duration.
func Durations(ss []string) ([]timecalc.Duration, error) {
	out := make([]timecalc.Duration, 0, len(ss))
	for _, s := range ss {
		d, err := Duration(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
