package scrape

import (
	"errors"
	"fmt"
)

// Cause classifies why a quote could not be extracted.
type Cause string

const (
	CauseTransport Cause = "transport"
	CauseStatus    Cause = "status"
	CauseParse     Cause = "parse"
	CauseNoMatch   Cause = "no_match"
	CauseNoDigits  Cause = "no_digits"
	CauseOverflow  Cause = "overflow"
)

var (
	ErrStatus   = errors.New("unexpected status code")
	ErrNoMatch  = errors.New("selector matched no node")
	ErrNoDigits = errors.New("matched text has no digits")
	ErrOverflow = errors.New("quote does not fit in int64")
)

// ExtractError is the reason carried by an unavailable quote.
type ExtractError struct {
	URL   string
	Cause Cause
	Err   error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Cause, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// CauseOf returns the Cause of err, or "" when err is not an ExtractError.
func CauseOf(err error) Cause {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Cause
	}
	return ""
}
