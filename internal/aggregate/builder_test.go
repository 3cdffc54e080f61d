package aggregate

import (
    "context"
    "encoding/json"
    "errors"
    "sort"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "priceboard/internal/catalog"
    "priceboard/internal/provider"
)

var fixedNow = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC) // 13:30:00 in Tehran

// table answers per URL; URLs missing from the table fail.
type table map[string]provider.Result

func (tb table) Extract(_ context.Context, url, _ string) provider.Result {
    if r, ok := tb[url]; ok { return r }
    return provider.Unavailable(errors.New("connection refused"))
}

func newTestBuilder(c catalog.Catalog, e provider.Extractor) *Builder {
    return NewBuilder(Config{
        Catalog: c,
        Ratio:   10,
        Now:     func() time.Time { return fixedNow },
        NewID:   func() string { return "snap-1" },
    }, e, nil)
}

func TestBuild_DollarEndToEnd(t *testing.T) {
    c := catalog.Catalog{{Category: "currency", Item: "dollar", URL: "u/dollar", Selector: "s"}}
    b := newTestBuilder(c, table{"u/dollar": provider.Available(560000)})

    snap := b.Build(t.Context())

    assert.Equal(t, int64(56000), snap.Value("currency", "dollar"))
    assert.Equal(t, "13:30:00", snap.LastUpdate)
    assert.Equal(t, "snap-1", snap.ID)
    assert.True(t, snap.CapturedAt.Equal(fixedNow))
}

func TestBuild_FailedItemIsZeroAndNoError(t *testing.T) {
    c := catalog.Catalog{
        {Category: "currency", Item: "dollar", URL: "u/dollar", Selector: "s"},
        {Category: "currency", Item: "gbp", URL: "u/gbp", Selector: "s"},
    }
    b := newTestBuilder(c, table{"u/dollar": provider.Available(560000)})

    snap := b.Build(t.Context())

    assert.Equal(t, int64(0), snap.Value("currency", "gbp"))
    r, ok := snap.Result("currency", "gbp")
    require.True(t, ok, "failed item must still be present")
    assert.False(t, r.Available(), "a failed extraction is not a zero price")
    assert.Equal(t, int64(56000), snap.Value("currency", "dollar"))

    missing := snap.Unavailable()
    require.Len(t, missing, 1)
    assert.Equal(t, Missing{Category: "currency", Item: "gbp", Error: "connection refused"}, missing[0])
}

func TestBuild_RealZeroStaysAvailable(t *testing.T) {
    c := catalog.Catalog{{Category: "coins", Item: "rob", URL: "u/rob", Selector: "s"}}
    snap := newTestBuilder(c, table{"u/rob": provider.Available(5)}).Build(t.Context())

    r, ok := snap.Result("coins", "rob")
    require.True(t, ok)
    assert.True(t, r.Available())
    assert.Equal(t, int64(0), r.Value)
    assert.Empty(t, snap.Unavailable())
}

func TestBuild_StructureMatchesCatalogEvenWhenEverythingFails(t *testing.T) {
    c := catalog.Default()
    snap := newTestBuilder(c, table{}).Build(t.Context())

    assert.Equal(t, c.Categories(), snap.Categories())
    for _, cat := range c.Categories() {
        want := c.Items(cat)
        got := make([]string, 0, len(want))
        for item, v := range snap.Items(cat) {
            got = append(got, item)
            assert.Zero(t, v)
        }
        assert.ElementsMatch(t, want, got, cat)
    }
    assert.Len(t, snap.Unavailable(), len(c))
}

func TestBuild_SequentialInCatalogOrder(t *testing.T) {
    c := catalog.Default()
    var mu sync.Mutex
    var order []string
    e := provider.ExtractorFunc(func(_ context.Context, url, _ string) provider.Result {
        mu.Lock()
        order = append(order, url)
        mu.Unlock()
        return provider.Available(10)
    })

    newTestBuilder(c, e).Build(t.Context())

    want := make([]string, 0, len(c))
    for _, s := range c { want = append(want, s.URL) }
    assert.Equal(t, want, order)
}

func TestBuild_ConcurrentExtraction(t *testing.T) {
    c := catalog.Default()
    e := provider.ExtractorFunc(func(_ context.Context, url, _ string) provider.Result {
        time.Sleep(20 * time.Millisecond)
        if url == c[0].URL { return provider.Unavailable(errors.New("timeout")) }
        return provider.Available(int64(len(url)) * 10)
    })
    b := NewBuilder(Config{Catalog: c, MaxConcurrency: len(c), Now: func() time.Time { return fixedNow }}, e, nil)

    start := time.Now()
    snap := b.Build(t.Context())
    assert.Less(t, time.Since(start), 20*time.Millisecond*time.Duration(len(c)))

    for i, s := range c {
        if i == 0 {
            assert.Zero(t, snap.Value(s.Category, s.Item))
            continue
        }
        assert.Equal(t, int64(len(s.URL)), snap.Value(s.Category, s.Item), s.Item)
    }
}

func TestBuild_FreshIDs(t *testing.T) {
    c := catalog.Catalog{{Category: "currency", Item: "dollar", URL: "u", Selector: "s"}}
    b := NewBuilder(Config{Catalog: c}, table{}, nil)

    a, z := b.Build(t.Context()), b.Build(t.Context())
    assert.NotEmpty(t, a.ID)
    assert.NotEqual(t, a.ID, z.ID)
}

func TestSnapshot_MarshalJSON(t *testing.T) {
    c := catalog.Catalog{
        {Category: "gold", Item: "24k", URL: "u/24k", Selector: "s"},
        {Category: "currency", Item: "dollar", URL: "u/dollar", Selector: "s"},
        {Category: "currency", Item: "gbp", URL: "u/gbp", Selector: "s"},
    }
    snap := newTestBuilder(c, table{
        "u/24k":    provider.Available(65_000_000),
        "u/dollar": provider.Available(560_000),
    }).Build(t.Context())

    b, err := json.Marshal(snap)
    require.NoError(t, err)

    var got map[string]any
    require.NoError(t, json.Unmarshal(b, &got))
    keys := make([]string, 0, len(got))
    for k := range got { keys = append(keys, k) }
    sort.Strings(keys)
    assert.Equal(t, []string{"currency", "gold", "last_update"}, keys)

    assert.Equal(t, "13:30:00", got["last_update"])
    assert.Equal(t, map[string]any{"24k": float64(6_500_000)}, got["gold"])
    assert.Equal(t, map[string]any{"dollar": float64(56_000), "gbp": float64(0)}, got["currency"])
}

func TestSnapshot_ItemsReturnsCopy(t *testing.T) {
    c := catalog.Catalog{{Category: "currency", Item: "dollar", URL: "u", Selector: "s"}}
    snap := newTestBuilder(c, table{"u": provider.Available(100)}).Build(t.Context())

    items := snap.Items("currency")
    items["dollar"] = 1
    assert.Equal(t, int64(10), snap.Value("currency", "dollar"))
}
