package ratelimit

import (
    "context"
    "sync"
    "time"

    "priceboard/internal/provider"
)

// MinInterval wraps an Extractor and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last call,
// or return an unavailable quote early if the context is canceled.
type MinInterval struct {
    E        provider.Extractor
    Interval time.Duration
    mu       sync.Mutex
    last     time.Time
}

func (m *MinInterval) Extract(ctx context.Context, url, selector string) provider.Result {
    if m.Interval > 0 {
        // reserve the next slot under the lock so concurrent callers queue up
        m.mu.Lock()
        now := time.Now()
        slot := m.last.Add(m.Interval)
        if slot.Before(now) { slot = now }
        m.last = slot
        m.mu.Unlock()
        if wait := time.Until(slot); wait > 0 {
            t := time.NewTimer(wait)
            defer t.Stop()
            select {
            case <-ctx.Done():
                return provider.Unavailable(ctx.Err())
            case <-t.C:
            }
        }
    }
    return m.E.Extract(ctx, url, selector)
}
