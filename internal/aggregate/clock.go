package aggregate

import (
    "fmt"
    "time"
    _ "time/tzdata"

    "github.com/go-universal/jalaali"
)

// DefaultTimezone is the zone the capture time is displayed in.
const DefaultTimezone = "Asia/Tehran"

// TehranLocation returns Asia/Tehran even on hosts without a zoneinfo database.
func TehranLocation() *time.Location {
    return jalaali.TehranTz()
}

// LoadLocation resolves an IANA zone name. Asia/Tehran never fails.
func LoadLocation(name string) (*time.Location, error) {
    if name == "" || name == DefaultTimezone { return TehranLocation(), nil }
    loc, err := time.LoadLocation(name)
    if err != nil { return nil, fmt.Errorf("load timezone %q: %w", name, err) }
    return loc, nil
}

// FormatClock renders t as 24-hour HH:MM:SS wall-clock time in loc.
func FormatClock(t time.Time, loc *time.Location) string {
    return t.In(loc).Format("15:04:05")
}

// FormatJalali renders t as a Jalali "YYYY/MM/DD HH:MM" in loc.
func FormatJalali(t time.Time, loc *time.Location) string {
    return jalaali.New(t.In(loc)).Format("2006/01/02 15:04")
}
