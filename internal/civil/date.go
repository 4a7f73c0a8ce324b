// internal/civil/date.go
package civil

import (
	"errors"
	"strings"
	"time"
)

// Date is a calendar day with no time-of-day or zone. The zero value is
// 0001-01-01.
type Date struct {
	t time.Time // always UTC midnight
}

// NullDate is a Date that may be absent.
type NullDate struct {
	Date  Date
	Valid bool
}

// NullInt is an int that may be absent.
type NullInt struct {
	Int   int
	Valid bool
}

const isoLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

var ErrBadDate = errors.New("unparseable date")

// looseLayouts are tried in order by ParseLoose. Partial dates resolve to the
// first day of the month or year.
var looseLayouts = []string{
	isoLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02",
	"2006-01",
	"2006",
}

// New returns the date for y-m-d, normalising out-of-range values the way
// time.Date does.
func New(y int, m time.Month, d int) Date {
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// ParseISO parses exactly YYYY-MM-DD.
func ParseISO(s string) (Date, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrBadDate
	}
	return FromTime(t), nil
}

// ParseLoose accepts ISO dates, timestamps and partial dates. Anything it
// cannot read is reported as absent, never as an error.
func ParseLoose(s string) NullDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullDate{}
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NullDate{Date: FromTime(t), Valid: true}
		}
	}
	return NullDate{}
}

// Sub returns d - u in whole days. Both are UTC midnights, so the second
// difference is an exact multiple of a day; time.Time.Sub would saturate
// beyond roughly 292 years.
func (d Date) Sub(u Date) int {
	return int((d.t.Unix() - u.t.Unix()) / secondsPerDay)
}

func (d Date) Equal(u Date) bool { return d.t.Equal(u.t) }

// Time returns the date as UTC midnight.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string { return d.t.Format(isoLayout) }

// String renders an absent date as "".
func (n NullDate) String() string {
	if !n.Valid {
		return ""
	}
	return n.Date.String()
}

// Of wraps a present date.
func Of(d Date) NullDate { return NullDate{Date: d, Valid: true} }

// Int wraps a present int.
func Int(v int) NullInt { return NullInt{Int: v, Valid: true} }
