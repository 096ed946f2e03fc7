package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ]\d{2}:\d{2}(?::\d{2})?)?$`)
	dmyDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// NormalizeDate accepts YYYY-MM-DD first and DD/MM/YYYY second. Two-digit years
// and every other shape are rejected rather than guessed.
func NormalizeDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if m := isoDatePattern.FindStringSubmatch(value); m != nil {
		return buildDate(value, m[1], m[2], m[3])
	}

	if m := dmyDatePattern.FindStringSubmatch(value); m != nil {
		return buildDate(value, m[3], m[2], m[1])
	}

	return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD or DD/MM/YYYY", ErrInvalidDate, value)
}

func buildDate(raw, year, month, day string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	if m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("%w: %q has month %d", ErrInvalidDate, raw, m)
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 -> 03/03); reject instead.
	if t.Day() != d || int(t.Month()) != m || t.Year() != y {
		return time.Time{}, fmt.Errorf("%w: %q has no day %d in month %d", ErrInvalidDate, raw, d, m)
	}

	return t, nil
}

// normalizeSheetDate additionally accepts spreadsheet serial numbers, which is
// how date-formatted XLSX cells arrive when read raw.
func normalizeSheetDate(value string) (time.Time, error) {
	t, err := NormalizeDate(value)
	if err == nil {
		return t, nil
	}

	serial, parseErr := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if parseErr != nil || serial < 1 {
		return time.Time{}, err
	}

	converted, convErr := excelize.ExcelDateToTime(serial, false)
	if convErr != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, convErr)
	}

	return time.Date(converted.Year(), converted.Month(), converted.Day(), 0, 0, 0, 0, time.UTC), nil
}
