// Package date parses transaction timestamps and groups them by calendar month.
//
// Transactions carry a full instant (date and time of day). User input and
// older backups use several textual layouts, so parsing is permissive while
// formatting always produces RFC 3339.
package date

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LocalLayout is the minute precision layout used by datetime inputs ("2024-01-05T10:30").
const LocalLayout = "2006-01-02T15:04"

// DateLayout is the day precision layout.
const DateLayout = "2006-01-02"

// readLayouts are tried in order by Parse.
var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	LocalLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
	"2006-1-2", // single digit month/day
}

// Parse parses s as an instant. Layouts without a zone are read in the local time zone.
func Parse(s string) (time.Time, error) { return ParseIn(s, time.Local) }

// ParseIn parses s as an instant. Layouts without a zone are read in loc.
func ParseIn(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if strings.EqualFold(s, "now") {
		return time.Now().In(loc).Truncate(time.Minute), nil
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected a date like %q or %q", s, DateLayout, LocalLayout)
}

// MustParse is like Parse but panics on error. It is meant for tests and constants.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Format returns the canonical representation of t, RFC 3339 with as many
// fractional seconds as needed to keep instants apart.
func Format(t time.Time) string { return t.Format(time.RFC3339Nano) }

// Month is a calendar month.
type Month struct {
	y int
	m time.Month
}

// NewMonth returns the normalized month.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{t.Year(), t.Month()}
}

// MonthOf returns the calendar month of t, in t's own location.
func MonthOf(t time.Time) Month { return Month{t.Year(), t.Month()} }

// Year returns the month's year.
func (m Month) Year() int { return m.y }

// Month returns the month of the year.
func (m Month) Month() time.Month { return m.m }

// String returns the sortable key "2006-01".
func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.y, int(m.m)) }

// Label returns a short human label like "Jan 2024".
func (m Month) Label() string { return time.Date(m.y, m.m, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006") }

// Compare returns -1, 0 or +1 depending on whether m is before, equal to or after o.
func (m Month) Compare(o Month) int {
	switch {
	case m.y < o.y || (m.y == o.y && m.m < o.m):
		return -1
	case m == o:
		return 0
	default:
		return 1
	}
}

// Before reports whether m is before o.
func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }

// Next returns the following month.
func (m Month) Next() Month { return NewMonth(m.y, m.m+1) }

// MarshalJSON implements the json.Marshaler interface.
func (m Month) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// UnmarshalJSON implements the json.Unmarshaler interface.
func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return fmt.Errorf("invalid month %q: %w", s, err)
	}
	*m = MonthOf(t)
	return nil
}
