package renderer

import (
	"fmt"
	"strings"
	"time"
)

// DateLocale selects how the date line is printed.
type DateLocale string

const (
	LocaleEnglish    DateLocale = "en"
	LocaleIndonesian DateLocale = "id"
)

var indonesianMonths = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func ParseDateLocale(value string) (DateLocale, error) {
	switch locale := DateLocale(strings.ToLower(strings.TrimSpace(value))); locale {
	case "", LocaleEnglish:
		return LocaleEnglish, nil
	case LocaleIndonesian:
		return LocaleIndonesian, nil
	default:
		return "", fmt.Errorf("unsupported date locale %q", value)
	}
}

// FormatDate prints t as "January 2, 2006" in English or "2 Januari 2006" in
// Indonesian. Unknown locales fall back to English.
func FormatDate(t time.Time, locale DateLocale) string {
	if locale == LocaleIndonesian {
		return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
	}
	return t.Format(DisplayDateLayout)
}
