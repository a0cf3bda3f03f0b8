package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var TaipeiTZ = time.FixedZone("UTC+8", 8*60*60)

func TaipeiNow() time.Time {
	return time.Now().In(TaipeiTZ)
}

func MustParseDate(dateStr string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	return t
}

func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	// Try standard RFC3339 format (ISO 8601)
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return &t, nil
	}

	// Try with nanoseconds (e.g. 2025-10-13T09:30:00.123Z)
	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return &t, nil
	}

	// Try fallback common formats
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, time.UTC); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}

var rocDatePattern = regexp.MustCompile(`^(\d{2,3})[./-](\d{1,2})[./-](\d{1,2})$`)

// ParseROCDate converts a Republic-of-China calendar date, as found in
// legacy contract workbooks (e.g. "113/05/01"), to a Gregorian date by
// adding 1911 to the year.
func ParseROCDate(s string) (time.Time, error) {
	m := rocDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a ROC date: %q", s)
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid ROC date: %q", s)
	}

	return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// ParseLegacyDate accepts either an ISO date or a ROC date, trying ISO
// first. Workbook cells sometimes carry a time component ("2024-05-01
// 00:00:00"); those fall through to the timestamp layouts and keep only
// the date part.
func ParseLegacyDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := ParseROCDate(s); err == nil {
		return t, nil
	}
	t, err := ParseISOTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized legacy date: %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
