package core

import (
	"database/sql/driver"
	"time"

	"github.com/pkg/errors"
)

// API wire formats. Topic dates are day-granular; session/interaction
// timestamps are minute-granular.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02 15:04"
)

type (
	// Date is a day-granular instant rendered as "2006-01-02" in JSON.
	Date struct{ time.Time }

	// DateTime is a minute-granular instant rendered as "2006-01-02 15:04" in JSON.
	DateTime struct{ time.Time }
)

func NewDate(t time.Time) Date         { return Date{t.UTC()} }
func NewDateTime(t time.Time) DateTime { return DateTime{t.UTC().Truncate(time.Minute)} }

func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.UTC)
	if err != nil {
		return Date{}, errors.Wrap(err, "parsing date")
	}
	return Date{t}, nil
}

func ParseDateTime(s string) (DateTime, error) {
	t, err := time.ParseInLocation(DateTimeFormat, s, time.UTC)
	if err != nil {
		return DateTime{}, errors.Wrap(err, "parsing datetime")
	}
	return DateTime{t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.UTC().Format(DateFormat) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	parsed, err := ParseDate(unquote(s))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) { return d.UTC(), nil }

func (d *Date) Scan(src interface{}) error {
	t, ok := src.(time.Time)
	if !ok {
		return errors.Errorf("scanning Date: unexpected type %T", src)
	}
	d.Time = t.UTC()
	return nil
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.UTC().Format(DateTimeFormat) + `"`), nil
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	parsed, err := ParseDateTime(unquote(s))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

func (dt DateTime) Value() (driver.Value, error) { return dt.UTC(), nil }

func (dt *DateTime) Scan(src interface{}) error {
	t, ok := src.(time.Time)
	if !ok {
		return errors.Errorf("scanning DateTime: unexpected type %T", src)
	}
	dt.Time = t.UTC().Truncate(time.Minute)
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
