package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02" // yyyy-MM-dd

// Date is a calendar date as PostgREST serializes date columns.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date format: %v", err)
	}

	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal(nil)
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d Date) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// DaysSince returns the whole days from other to d, negative when d is earlier.
func (d Date) DaysSince(other Date) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}
