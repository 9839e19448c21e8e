package srs

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component.
// It is stored as midnight UTC so that day arithmetic never crosses a DST boundary.
// The zero Date means "absent".
type Date struct {
	time.Time
}

// NewDate returns the calendar date year-month-day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses YYYY-MM-DD, falling back to RFC3339 and RFC3339Nano timestamps
// written by older versions.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err == nil {
		return DateOf(t), nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return DateOf(t), nil
	}
	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("unable to parse date '%s': expected YYYY-MM-DD, RFC3339, or RFC3339Nano format", s)
}

// parseDateOrAbsent never fails: corrupted dates are treated as absent.
func parseDateOrAbsent(s string) Date {
	if s == "" {
		return Date{}
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return d
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(text []byte) error {
	*d = parseDateOrAbsent(string(text))
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*d = Date{}
		return nil
	}
	*d = parseDateOrAbsent(value.Value)
	return nil
}

// MarshalJSON implements json.Marshaler. The zero Date serializes as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil || s == nil {
		*d = Date{}
		return nil
	}
	*d = parseDateOrAbsent(*s)
	return nil
}

// Value implements driver.Valuer so dates are stored as YYYY-MM-DD text.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case string:
		*d = parseDateOrAbsent(v)
	case []byte:
		*d = parseDateOrAbsent(string(v))
	case time.Time:
		*d = DateOf(v)
	default:
		*d = Date{}
	}
	return nil
}
