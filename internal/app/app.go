// Package app wires a loaded Config into the scrape, rate limit, aggregate
// and cache layers. Both binaries go through it.
package app

import (
    "fmt"
    "io"
    "log/slog"
    "time"

    "priceboard/internal/aggregate"
    "priceboard/internal/cache"
    "priceboard/internal/catalog"
    "priceboard/internal/config"
    "priceboard/internal/httpx"
    "priceboard/internal/logging"
    "priceboard/internal/provider"
    "priceboard/internal/provider/ratelimit"
    "priceboard/internal/provider/scrape"
)

// NewLogger builds the base logger described by cfg.Log.
func NewLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
    level, err := logging.ParseLevel(cfg.Log.Level)
    if err != nil { return nil, err }
    return logging.New(w, level, cfg.Log.Format)
}

// NewExtractor returns the scraper, paced when cfg asks for it.
func NewExtractor(cfg config.Config, logger *slog.Logger) provider.Extractor {
    timeout := time.Duration(cfg.Fetch.TimeoutSec) * time.Second
    client := httpx.New(timeout)
    if cfg.Fetch.UserAgent != "" { client.UserAgent = cfg.Fetch.UserAgent }

    e := scrape.New(
        scrape.WithHTTPClient(client),
        scrape.WithTimeout(timeout),
        scrape.WithLogger(logger),
    )
    return ratelimit.Wrap(e,
        float64(cfg.Fetch.MaxRequestsPerMinute),
        cfg.Fetch.Burst,
        time.Duration(cfg.Fetch.MinRequestIntervalMs)*time.Millisecond,
    )
}

// NewBuilder assembles a snapshot builder over c, or over the configured catalog when c is nil.
func NewBuilder(cfg config.Config, c catalog.Catalog, e provider.Extractor, logger *slog.Logger) (*aggregate.Builder, error) {
    loc, err := aggregate.LoadLocation(cfg.Quotes.Timezone)
    if err != nil { return nil, fmt.Errorf("timezone: %w", err) }
    if c == nil { c = cfg.EffectiveCatalog() }
    if err := c.Validate(); err != nil { return nil, err }
    return aggregate.NewBuilder(aggregate.Config{
        Catalog:        c,
        Ratio:          cfg.Quotes.NormalizeRatio,
        Location:       loc,
        MaxConcurrency: cfg.Fetch.MaxConcurrency,
    }, e, logger), nil
}

// NewGate is the full pipeline behind the cache gate.
func NewGate(cfg config.Config, logger *slog.Logger) (*cache.Gate, error) {
    b, err := NewBuilder(cfg, nil, NewExtractor(cfg, logger), logger)
    if err != nil { return nil, err }
    return cache.New(b, time.Duration(cfg.Cache.WindowSec)*time.Second, logger), nil
}
