// Package format holds the input masks, field checks and display helpers
// shared by the terminal UI and the CLI. Everything here is pure: failures are
// reported as false or as the unchanged input, never as a panic.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	cuitDigits = 11
	dateDigits = 8

	// DisplayLayout is the DD/MM/YYYY form used for every rendered date.
	DisplayLayout = "02/01/2006"
	// DateTimeLayout mirrors the es-AR locale string used by the detail view.
	DateTimeLayout = "02/01/2006, 15:04:05"

	// NotAvailable is shown for timestamps the server never set.
	NotAvailable = "No disponible"
)

var (
	cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

	dateInputRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// parse order matters: full timestamps first, bare dates last
	displayLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// digitsOnly strips everything that is not an ASCII digit
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CUIT masks raw input as NN-NNNNNNNN-N, inserting dashes only once enough
// digits are present.
func CUIT(raw string) string {
	d := digitsOnly(raw)
	if len(d) > cuitDigits {
		d = d[:cuitDigits]
	}

	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 10:
		return d[:2] + "-" + d[2:]
	default:
		return d[:2] + "-" + d[2:10] + "-" + d[10:]
	}
}

// CUITCheckDigit returns the mod-11 check digit for the first ten digits of
// a CUIT. ok is false if fewer than ten digits are present.
func CUITCheckDigit(cuit string) (digit int, ok bool) {
	d := digitsOnly(cuit)
	if len(d) < 10 {
		return 0, false
	}

	sum := 0
	for i, w := range cuitWeights {
		sum += int(d[i]-'0') * w
	}

	rem := sum % 11
	if rem < 2 {
		return rem, true
	}
	return 11 - rem, true
}

// ValidCUIT reports whether cuit has exactly eleven digits and a correct
// check digit. Separators are ignored.
func ValidCUIT(cuit string) bool {
	d := digitsOnly(cuit)
	if len(d) != cuitDigits {
		return false
	}
	check, _ := CUITCheckDigit(d)
	return check == int(d[10]-'0')
}

// DateInput masks raw input as DD/MM/YYYY progressively.
func DateInput(raw string) string {
	d := digitsOnly(raw)
	if len(d) > dateDigits {
		d = d[:dateDigits]
	}

	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 4:
		return d[:2] + "/" + d[2:]
	default:
		return d[:2] + "/" + d[2:4] + "/" + d[4:]
	}
}

// ValidDateInput reports whether s is a real, non-future DD/MM/YYYY date.
func ValidDateInput(s string) bool {
	return ValidDateInputAt(s, time.Now())
}

// ValidDateInputAt is ValidDateInput against an explicit "now".
func ValidDateInputAt(s string, now time.Time) bool {
	t, err := parseDateInput(s, now.Location())
	if err != nil {
		return false
	}
	return !t.After(now)
}

// ParseDateInput converts a DD/MM/YYYY string into a calendar date at
// midnight UTC. Impossible dates such as 31/02 are rejected.
func ParseDateInput(s string) (time.Time, error) {
	return parseDateInput(s, time.UTC)
}

func parseDateInput(s string, loc *time.Location) (time.Time, error) {
	m := dateInputRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want DD/MM/YYYY", s)
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	// time.Date normalises overflow, so an echo mismatch means the
	// calendar date does not exist
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date %q: no such calendar day", s)
	}
	return t, nil
}

// ValidEmail reports whether s has a local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// DateDisplay renders an ISO date or timestamp as DD/MM/YYYY. Empty input
// yields "" and unparseable input is returned unchanged.
func DateDisplay(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range displayLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DisplayLayout)
		}
	}
	return value
}

// DateTime renders a server timestamp in local time, or NotAvailable.
func DateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.Local().Format(DateTimeLayout)
}
