package scrape

import (
	"fmt"
	"strconv"
	"strings"
)

// Digits drops every rune that is not a decimal digit. Persian and
// Arabic-Indic digits are kept and folded to ASCII.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		}
	}
	return b.String()
}

// ParseQuote turns node text such as "1,234,567 ریال" into 1234567.
func ParseQuote(text string) (int64, error) {
	d := Digits(strings.TrimSpace(text))
	if d == "" {
		return 0, ErrNoDigits
	}
	v, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, d)
	}
	return v, nil
}
