// Package ffn holds everything that talks to the federation results site:
// literal normalizers for times, dates and points, the HTML table parser,
// and the HTTP fetcher.
//
// Accepted literal formats (anything else is rejected, never an error):
//
//	time    m:ss.cc | ss.cc        up to 999 minutes; ss < 60 after minutes; one-digit hundredths pad ("59.8" = 59.80)
//	date    dd/mm/yyyy             calendar-checked, returned as yyyy-mm-dd
//	points  NNN pts                "pt" and any case accepted
//	age     (NN ans)               explicit competition age annotation
package ffn

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeRE   = regexp.MustCompile(`^(?:(\d{1,3}):)?(\d{1,2})\.(\d{1,2})$`)
	dateRE   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	pointsRE = regexp.MustCompile(`(?i)^(\d{1,5})\s*pts?$`)
	ageRE    = regexp.MustCompile(`^\((\d{1,2}) ans\)$`)
	numberRE = regexp.MustCompile(`^[\d\s.,:]+$`)
)

// ParseTime converts a swim time literal to seconds rounded to the hundredth.
func ParseTime(raw string) (float64, bool) {
	m := timeRE.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	minutes := 0
	if m[1] != "" {
		minutes, _ = strconv.Atoi(m[1])
	}
	secs, _ := strconv.Atoi(m[2])
	if m[1] != "" && secs >= 60 {
		return 0, false
	}
	hundredths, _ := strconv.Atoi(m[3] + strings.Repeat("0", 2-len(m[3])))

	total := (minutes*60+secs)*100 + hundredths
	return float64(total) / 100, true
}

// maxMinutes is the largest minute count ParseTime accepts.
const maxMinutes = 999

// FormatTimeDisplay renders seconds the way ParseTime reads them back:
// "1:02.34" above a minute, "27.45" below. Negative, NaN or out-of-range
// input (1000 minutes and more) yields "".
func FormatTimeDisplay(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return ""
	}
	h := int(math.Round(seconds * 100))
	minutes := h / 6000
	if minutes > maxMinutes {
		return ""
	}
	secs := (h % 6000) / 100
	cents := h % 100
	if minutes > 0 {
		return fmt.Sprintf("%d:%02d.%02d", minutes, secs, cents)
	}
	return fmt.Sprintf("%d.%02d", secs, cents)
}

// ParseDate converts dd/mm/yyyy to an ISO yyyy-mm-dd date.
func ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !dateRE.MatchString(s) {
		return "", false
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// ParsePoints reads a "NNN pts" cell.
func ParsePoints(raw string) (int, bool) {
	m := pointsRE.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseAgeAnnotation reads an exact "(NN ans)" cell.
func ParseAgeAnnotation(raw string) (int, bool) {
	m := ageRE.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	return n, true
}

// isPureNumber reports cells made only of digits and separators.
func isPureNumber(s string) bool {
	return numberRE.MatchString(s)
}
