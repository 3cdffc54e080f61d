package aggregate

import (
    "encoding/json"
    "sort"
    "time"

    "priceboard/internal/provider"
)

// LastUpdateKey is the JSON field carrying the capture time.
const LastUpdateKey = "last_update"

// Snapshot is one complete, normalized build. It is never mutated once returned by Build.
type Snapshot struct {
    ID         string
    CapturedAt time.Time
    LastUpdate string // HH:MM:SS in the builder's location
    Jalali     string // Jalali calendar date and time in the builder's location

    categories []string
    quotes     map[string]map[string]provider.Result
}

// Categories returns category names in catalog order.
func (s *Snapshot) Categories() []string {
    return append([]string(nil), s.categories...)
}

// Result returns the normalized quote for category/item.
func (s *Snapshot) Result(category, item string) (provider.Result, bool) {
    items, ok := s.quotes[category]
    if !ok { return provider.Result{}, false }
    r, ok := items[item]
    return r, ok
}

// Value returns the wire value: 0 for unknown items and unavailable quotes.
func (s *Snapshot) Value(category, item string) int64 {
    r, _ := s.Result(category, item)
    return r.Int64()
}

// Items returns a copy of category's wire values.
func (s *Snapshot) Items(category string) map[string]int64 {
    items := s.quotes[category]
    out := make(map[string]int64, len(items))
    for k, r := range items { out[k] = r.Int64() }
    return out
}

// Missing describes a catalog item whose quote could not be extracted.
type Missing struct {
    Category string `json:"category"`
    Item     string `json:"item"`
    Error    string `json:"error"`
}

// Unavailable lists unavailable items sorted by category then item.
func (s *Snapshot) Unavailable() []Missing {
    var out []Missing
    for cat, items := range s.quotes {
        for item, r := range items {
            if r.Available() { continue }
            out = append(out, Missing{Category: cat, Item: item, Error: r.Err.Error()})
        }
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Category != out[j].Category { return out[i].Category < out[j].Category }
        return out[i].Item < out[j].Item
    })
    return out
}

// MarshalJSON renders the served payload: one object per category mapping
// item -> integer, plus "last_update". Unavailable quotes are written as 0.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
    out := make(map[string]any, len(s.quotes)+1)
    for _, cat := range s.categories { out[cat] = s.Items(cat) }
    out[LastUpdateKey] = s.LastUpdate
    return json.Marshal(out)
}
