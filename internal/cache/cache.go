package cache

import (
    "context"
    "log/slog"
    "sync"
    "sync/atomic"
    "time"

    "golang.org/x/sync/singleflight"

    "priceboard/internal/aggregate"
    "priceboard/internal/logging"
)

// DefaultWindow is how long a snapshot is served before a rebuild is forced.
const DefaultWindow = 30 * time.Second

// Builder produces a complete snapshot. It must not fail.
type Builder interface {
    Build(ctx context.Context) *aggregate.Snapshot
}

// Gate memoizes the latest snapshot and rebuilds it once it is Window old.
// Concurrent callers that find the cache stale share a single rebuild.
type Gate struct {
    B      Builder
    Window time.Duration
    // Now is the clock; nil means time.Now.
    Now func() time.Time

    logger *slog.Logger

    mu      sync.RWMutex
    snap    *aggregate.Snapshot // nil until the first build
    builtAt time.Time

    sf     singleflight.Group
    builds atomic.Int64
    hits   atomic.Int64
}

func New(b Builder, window time.Duration, logger *slog.Logger) *Gate {
    return &Gate{
        B:      b,
        Window: window,
        logger: logging.Default(logger).With("component", "cache"),
    }
}

func (g *Gate) now() time.Time {
    if g.Now != nil { return g.Now() }
    return time.Now()
}

func (g *Gate) log() *slog.Logger {
    if g.logger == nil { return logging.Discard() }
    return g.logger
}

// fresh reports whether snap, built at builtAt, can still be served at now.
// elapsed == Window is already stale.
func (g *Gate) fresh(snap *aggregate.Snapshot, builtAt, now time.Time) bool {
    return snap != nil && now.Sub(builtAt) < g.Window
}

// Current returns the cached snapshot, rebuilding it first when the cache is
// empty or the window has elapsed. It never fails.
func (g *Gate) Current(ctx context.Context) *aggregate.Snapshot {
    now := g.now()

    g.mu.RLock()
    snap, builtAt := g.snap, g.builtAt
    g.mu.RUnlock()
    if g.fresh(snap, builtAt, now) {
        g.hits.Add(1)
        return snap
    }

    v, _, shared := g.sf.Do("snapshot", func() (any, error) {
        // Double-check: a flight that finished while we were queued may have published.
        g.mu.RLock()
        snap, builtAt := g.snap, g.builtAt
        g.mu.RUnlock()
        if g.fresh(snap, builtAt, now) { return snap, nil }

        if snap == nil {
            g.log().Debug("cache empty, building")
        } else {
            g.log().Debug("cache stale, rebuilding", "age", now.Sub(builtAt))
        }
        // The build outlives the caller that triggered it; others may be waiting on it.
        next := g.B.Build(context.WithoutCancel(ctx))

        g.mu.Lock()
        g.snap, g.builtAt = next, now
        g.mu.Unlock()
        g.builds.Add(1)
        return next, nil
    })
    if shared { g.log().Debug("joined in-flight rebuild") }
    return v.(*aggregate.Snapshot)
}

// Peek returns the cached snapshot and its build time without building. snap is nil while empty.
func (g *Gate) Peek() (snap *aggregate.Snapshot, builtAt time.Time) {
    g.mu.RLock()
    defer g.mu.RUnlock()
    return g.snap, g.builtAt
}

// Stats reports how many builds ran and how many calls were served from cache.
type Stats struct {
    Builds int64 `json:"builds"`
    Hits   int64 `json:"hits"`
}

func (g *Gate) Stats() Stats {
    return Stats{Builds: g.builds.Load(), Hits: g.hits.Load()}
}
