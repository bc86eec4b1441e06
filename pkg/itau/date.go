package itau

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthCodes = [12]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// EncodeDate renders a calendar date as the bank's 7-character DDMMMYY code,
// e.g. 2026-02-20 -> "20FEB26". Only the calendar components are read; the
// time of day and location are ignored.
func EncodeDate(date time.Time) string {
	return fmt.Sprintf("%02d%s%02d", date.Day(), monthCodes[date.Month()-1], date.Year()%100)
}

// DecodeDate parses a DDMMMYY code back into a calendar date in the 2000s.
func DecodeDate(code string) (time.Time, error) {
	if len(code) != 7 {
		return time.Time{}, fmt.Errorf("date code must be 7 characters, got %d", len(code))
	}
	day, err := strconv.Atoi(code[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in date code %q", code)
	}
	month := 0
	for i, m := range monthCodes {
		if strings.EqualFold(code[2:5], m) {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, fmt.Errorf("invalid month in date code %q", code)
	}
	year, err := strconv.Atoi(code[5:])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in date code %q", code)
	}
	return time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
