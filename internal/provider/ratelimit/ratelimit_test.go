package ratelimit

import (
    "context"
    "sync/atomic"
    "testing"
    "time"

    "priceboard/internal/provider"
)

func counting(n *atomic.Int32) provider.Extractor {
    return provider.ExtractorFunc(func(context.Context, string, string) provider.Result {
        n.Add(1)
        return provider.Available(1)
    })
}

func TestMinInterval_SpacesCalls(t *testing.T) {
    var n atomic.Int32
    m := &MinInterval{E: counting(&n), Interval: 40 * time.Millisecond}

    start := time.Now()
    for i := 0; i < 3; i++ {
        if r := m.Extract(t.Context(), "u", "s"); !r.Available() { t.Fatalf("call %d: %v", i, r.Err) }
    }
    if el := time.Since(start); el < 80*time.Millisecond {
        t.Fatalf("3 calls finished in %v, want >= 80ms", el)
    }
    if n.Load() != 3 { t.Fatalf("want 3 calls, got %d", n.Load()) }
}

func TestMinInterval_CanceledContext(t *testing.T) {
    var n atomic.Int32
    m := &MinInterval{E: counting(&n), Interval: time.Hour}
    _ = m.Extract(t.Context(), "u", "s") // takes the first slot

    ctx, cancel := context.WithCancel(t.Context())
    cancel()
    r := m.Extract(ctx, "u", "s")
    if r.Available() { t.Fatal("want unavailable on canceled context") }
    if n.Load() != 1 { t.Fatalf("inner extractor called %d times, want 1", n.Load()) }
}

func TestTokenBucket_BurstThenWait(t *testing.T) {
    var n atomic.Int32
    // 1200/min = 20/s -> 50ms per token after a burst of 2
    tb := &TokenBucket{E: counting(&n), TB: NewTokenBucket(1200, 2)}

    start := time.Now()
    for i := 0; i < 3; i++ { tb.Extract(t.Context(), "u", "s") }
    if el := time.Since(start); el < 30*time.Millisecond {
        t.Fatalf("third call should wait for a token, took %v", el)
    }
    if n.Load() != 3 { t.Fatalf("want 3 calls, got %d", n.Load()) }
}

func TestTokenBucket_CanceledContext(t *testing.T) {
    var n atomic.Int32
    tb := &TokenBucket{E: counting(&n), TB: NewTokenBucket(1, 1)}
    tb.Extract(t.Context(), "u", "s")

    ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
    defer cancel()
    if r := tb.Extract(ctx, "u", "s"); r.Available() { t.Fatal("want unavailable when no token arrives in time") }
    if n.Load() != 1 { t.Fatalf("inner extractor called %d times, want 1", n.Load()) }
}

func TestWrap(t *testing.T) {
    var n atomic.Int32
    base := counting(&n)

    if _, ok := Wrap(base, 60, 1, time.Second).(*TokenBucket); !ok { t.Error("rpm set: want *TokenBucket") }
    if _, ok := Wrap(base, 0, 0, time.Second).(*MinInterval); !ok { t.Error("interval set: want *MinInterval") }
    if got := Wrap(base, 0, 0, 0); got == nil { t.Error("no pacing: want the extractor back") }
    if _, ok := Wrap(base, 0, 0, 0).(provider.ExtractorFunc); !ok { t.Error("no pacing: want unwrapped extractor") }
}
