// Package timeutil converts between the storage representation of timestamps
// (civil-local, timezone stripped) and the wire representation (UTC RFC3339).
package timeutil

import "time"

// Civil reinterprets an instant as a naive civil timestamp in loc: the clock
// reading in loc with the zone information dropped (stored as UTC components).
func Civil(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}

// Now returns the current civil-local timestamp, second precision.
func Now(loc *time.Location) time.Time {
	return Civil(time.Now(), loc).Truncate(time.Second)
}

// ToInstant converts a stored civil-local timestamp back to the absolute
// instant it denotes in loc.
func ToInstant(civil time.Time, loc *time.Location) time.Time {
	return time.Date(civil.Year(), civil.Month(), civil.Day(),
		civil.Hour(), civil.Minute(), civil.Second(), civil.Nanosecond(), loc)
}

// ToWire formats a stored civil-local timestamp as a UTC RFC3339 string.
func ToWire(civil time.Time, loc *time.Location) string {
	return ToInstant(civil, loc).UTC().Format(time.RFC3339)
}

// FromWire parses a UTC RFC3339 wire timestamp into its civil-local storage
// form.
func FromWire(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return Civil(t, loc), nil
}
