package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Weekday is an explicit enumerated weekday; the string values double as
// the JSON keys of a staff member's default schedule.
type Weekday string

const (
	Sunday    Weekday = "sun"
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
)

// WeekdayFrom maps time.Weekday to Weekday. The mapping is total.
func WeekdayFrom(d time.Weekday) Weekday {
	switch d {
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	default:
		return Saturday
	}
}

// DayPattern is one weekday's template in a staff default schedule
type DayPattern struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	IsClosed bool   `json:"is_closed"`
}

// WeekSchedule maps weekdays to working-hour templates. Stored as a JSONB
// column.
type WeekSchedule map[Weekday]DayPattern

// Pattern returns the template for a weekday, if one is defined.
func (s WeekSchedule) Pattern(d Weekday) (DayPattern, bool) {
	if s == nil {
		return DayPattern{}, false
	}
	p, ok := s[d]
	return p, ok
}

func (s WeekSchedule) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *WeekSchedule) Scan(src interface{}) error {
	if src == nil {
		*s = WeekSchedule{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported schedule column type %T", src)
	}
	return json.Unmarshal(b, s)
}
