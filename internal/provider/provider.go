package provider

import (
    "context"
    "errors"
)

// ErrUnavailable is reported for a Result that carries no value and no reason.
var ErrUnavailable = errors.New("quote unavailable")

// Result is one extracted quote. A nil Err means Value is a real price,
// including a real zero; a non-nil Err means the source gave us nothing.
type Result struct {
    Value int64
    Err   error
}

// Available wraps a successfully extracted value.
func Available(v int64) Result { return Result{Value: v} }

// Unavailable wraps the reason a quote could not be extracted.
func Unavailable(err error) Result {
    if err == nil { err = ErrUnavailable }
    return Result{Err: err}
}

func (r Result) Available() bool { return r.Err == nil }

// Int64 collapses the result to the wire form: unavailable quotes become 0.
func (r Result) Int64() int64 {
    if r.Err != nil { return 0 }
    return r.Value
}

// Extractor pulls a single quote out of the page at url.
// Implementations never fail loudly: every problem ends up in Result.Err.
type Extractor interface {
    Extract(ctx context.Context, url, selector string) Result
}

// ExtractorFunc adapts a plain function to Extractor.
type ExtractorFunc func(ctx context.Context, url, selector string) Result

func (f ExtractorFunc) Extract(ctx context.Context, url, selector string) Result {
    return f(ctx, url, selector)
}
