package ratelimit

import (
    "context"
    "time"

    "golang.org/x/time/rate"

    "priceboard/internal/provider"
)

// NewTokenBucket returns a limiter allowing perMinute calls with the given burst.
func NewTokenBucket(perMinute float64, burst int) *rate.Limiter {
    if perMinute <= 0 { return rate.NewLimiter(rate.Inf, 0) }
    if burst <= 0 { burst = 1 }
    return rate.NewLimiter(rate.Limit(perMinute/60.0), burst)
}

// TokenBucket wraps an Extractor and gates calls using a token bucket.
type TokenBucket struct {
    E  provider.Extractor
    TB *rate.Limiter
}

func (t *TokenBucket) Extract(ctx context.Context, url, selector string) provider.Result {
    if t.TB != nil {
        if err := t.TB.Wait(ctx); err != nil { return provider.Unavailable(err) }
    }
    return t.E.Extract(ctx, url, selector)
}

// Wrap applies the configured pacing to e. Token bucket wins when perMinute is set,
// otherwise a positive minInterval is used; with neither, e is returned as is.
func Wrap(e provider.Extractor, perMinute float64, burst int, minInterval time.Duration) provider.Extractor {
    if perMinute > 0 {
        return &TokenBucket{E: e, TB: NewTokenBucket(perMinute, burst)}
    }
    if minInterval > 0 {
        return &MinInterval{E: e, Interval: minInterval}
    }
    return e
}
