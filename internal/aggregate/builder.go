package aggregate

import (
    "context"
    "log/slog"
    "time"

    "github.com/google/uuid"
    "golang.org/x/sync/errgroup"

    "priceboard/internal/catalog"
    "priceboard/internal/logging"
    "priceboard/internal/provider"
)

// Config controls how snapshots are built.
type Config struct {
    Catalog  catalog.Catalog
    Ratio    int64
    Location *time.Location
    // MaxConcurrency limits parallel extractions. 1 (the default) extracts
    // sequentially in catalog order.
    MaxConcurrency int
    Now            func() time.Time
    NewID          func() string
}

// Builder turns the catalog into a Snapshot.
type Builder struct {
    cfg       Config
    extractor provider.Extractor
    norm      Normalizer
    logger    *slog.Logger
}

func NewBuilder(cfg Config, e provider.Extractor, logger *slog.Logger) *Builder {
    if cfg.Catalog == nil { cfg.Catalog = catalog.Default() }
    if cfg.Ratio <= 0 { cfg.Ratio = DefaultRatio }
    if cfg.Location == nil { cfg.Location = TehranLocation() }
    if cfg.MaxConcurrency <= 0 { cfg.MaxConcurrency = 1 }
    if cfg.Now == nil { cfg.Now = time.Now }
    if cfg.NewID == nil { cfg.NewID = func() string { return uuid.New().String() } }
    return &Builder{
        cfg:       cfg,
        extractor: e,
        norm:      Normalizer{Ratio: cfg.Ratio},
        logger:    logging.Default(logger).With("component", "builder"),
    }
}

// Catalog returns the entries this builder extracts.
func (b *Builder) Catalog() catalog.Catalog { return append(catalog.Catalog(nil), b.cfg.Catalog...) }

// Build extracts every catalog entry, normalizes the results and stamps them.
// It always returns a complete snapshot; failed items are unavailable, never absent.
func (b *Builder) Build(ctx context.Context) *Snapshot {
    start := time.Now()
    entries := b.cfg.Catalog
    raw := make([]provider.Result, len(entries))

    var g errgroup.Group
    g.SetLimit(b.cfg.MaxConcurrency)
    for i, spec := range entries {
        g.Go(func() error {
            raw[i] = b.extractor.Extract(ctx, spec.URL, spec.Selector)
            return nil
        })
    }
    _ = g.Wait()

    snap := &Snapshot{
        ID:         b.cfg.NewID(),
        categories: entries.Categories(),
        quotes:     make(map[string]map[string]provider.Result, 4),
    }
    missing := 0
    for i, spec := range entries {
        items, ok := snap.quotes[spec.Category]
        if !ok {
            items = make(map[string]provider.Result)
            snap.quotes[spec.Category] = items
        }
        r := b.norm.Apply(raw[i])
        if !r.Available() { missing++ }
        items[spec.Item] = r
    }

    snap.CapturedAt = b.cfg.Now()
    snap.LastUpdate = FormatClock(snap.CapturedAt, b.cfg.Location)
    snap.Jalali = FormatJalali(snap.CapturedAt, b.cfg.Location)

    b.logger.Info("snapshot built",
        "id", snap.ID,
        "items", len(entries),
        "unavailable", missing,
        "duration", time.Since(start),
    )
    return snap
}
