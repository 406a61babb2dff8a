package model

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for clinic-local calendar dates
	DateLayout = "2006-01-02"
	// WallClockLayout is the wire format for shift start/end times
	WallClockLayout = "15:04"

	wallClockWithSeconds = "15:04:05"
)

// LocalDate returns the calendar date of t in the given location as a
// YYYY-MM-DD string. The date key is built from local year/month/day
// components, never from a UTC string split, so instants near midnight
// land on the correct clinic-local day.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDate validates and parses a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, nil
}

// ParseWallClock accepts HH:MM or HH:MM:SS.
func ParseWallClock(s string) (time.Time, error) {
	if t, err := time.Parse(WallClockLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(wallClockWithSeconds, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// CombineDateTime resolves a clinic-local date plus wall-clock time into an
// absolute instant in the given location.
func CombineDateTime(date, wall string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	w, err := ParseWallClock(wall)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), w.Hour(), w.Minute(), w.Second(), 0, loc), nil
}

// WeekdayOfDate returns the weekday of a YYYY-MM-DD date string.
func WeekdayOfDate(date string) (Weekday, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return WeekdayFrom(d.Weekday()), nil
}
