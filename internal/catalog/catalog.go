// Package catalog holds the fixed table of quotes the service scrapes.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CategoryGold     = "gold"
	CategoryCoins    = "coins"
	CategoryCurrency = "currency"
)

// BaseURL is the quote site every default entry points at.
const BaseURL = "https://www.tgju.org"

// LastTradeSelector matches the last-trade cell on a tgju profile page.
const LastTradeSelector = `[data-col="info.last_trade.PDrCotVal"]`

// SourceSpec identifies one quote: where it lives and how to pull it out of the page.
type SourceSpec struct {
	Category string `json:"category"`
	Item     string `json:"item"`
	URL      string `json:"url"`
	Selector string `json:"selector"`
}

// Catalog is an ordered list of SourceSpecs. Order is the extraction order.
type Catalog []SourceSpec

func profile(category, item, slug string) SourceSpec {
	return SourceSpec{
		Category: category,
		Item:     item,
		URL:      BaseURL + "/profile/" + slug,
		Selector: LastTradeSelector,
	}
}

// Default returns a fresh copy of the built-in catalog.
func Default() Catalog {
	return Catalog{
		profile(CategoryGold, "24k", "geram24"),
		profile(CategoryGold, "18k_750", "geram18"),
		profile(CategoryGold, "18k_740", "gold_740k"),
		profile(CategoryGold, "used_gold", "gold_mini_size"),

		profile(CategoryCoins, "bahar_azadi", "sekeb"),
		profile(CategoryCoins, "emami", "sekee"),
		profile(CategoryCoins, "nim", "nim"),
		profile(CategoryCoins, "rob", "rob"),
		profile(CategoryCoins, "grami", "gerami"),

		profile(CategoryCurrency, "dollar", "price_dollar_rl"),
		profile(CategoryCurrency, "gbp", "price_gbp"),
	}
}

// Categories returns category names in first-seen order.
func (c Catalog) Categories() []string {
	seen := make(map[string]struct{}, 4)
	out := make([]string, 0, 4)
	for _, s := range c {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}
	return out
}

// Items returns the item keys of category in catalog order.
func (c Catalog) Items(category string) []string {
	var out []string
	for _, s := range c {
		if s.Category == category {
			out = append(out, s.Item)
		}
	}
	return out
}

// Filter keeps only the entries whose category is listed. An empty list keeps everything.
func (c Catalog) Filter(categories ...string) Catalog {
	if len(categories) == 0 {
		return append(Catalog(nil), c...)
	}
	want := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		want[cat] = struct{}{}
	}
	out := make(Catalog, 0, len(c))
	for _, s := range c {
		if _, ok := want[s.Category]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ErrInvalidCatalog is wrapped by every Validate failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Validate rejects empty catalogs, blank fields and duplicate category/item pairs.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalidCatalog)
	}
	var errs []error
	seen := make(map[[2]string]struct{}, len(c))
	for i, s := range c {
		if strings.TrimSpace(s.Category) == "" || strings.TrimSpace(s.Item) == "" {
			errs = append(errs, fmt.Errorf("%w: entry %d: category and item are required", ErrInvalidCatalog, i))
			continue
		}
		if s.Category == "last_update" {
			errs = append(errs, fmt.Errorf("%w: entry %d: category name %q is reserved", ErrInvalidCatalog, i, s.Category))
		}
		if strings.TrimSpace(s.URL) == "" || strings.TrimSpace(s.Selector) == "" {
			errs = append(errs, fmt.Errorf("%w: %s/%s: url and selector are required", ErrInvalidCatalog, s.Category, s.Item))
		}
		key := [2]string{s.Category, s.Item}
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate entry %s/%s", ErrInvalidCatalog, s.Category, s.Item))
		}
		seen[key] = struct{}{}
	}
	return errors.Join(errs...)
}
