package aggregate

import "priceboard/internal/provider"

// DefaultRatio converts rial quotes into toman.
const DefaultRatio = 10

// Normalizer converts a raw quote from the source unit into the display unit.
type Normalizer struct {
    Ratio int64
}

// Normalize floor-divides raw by the ratio. A non-positive ratio falls back to DefaultRatio.
func (n Normalizer) Normalize(raw int64) int64 {
    r := n.Ratio
    if r <= 0 { r = DefaultRatio }
    q := raw / r
    if raw%r != 0 && raw < 0 { q-- }
    return q
}

// Apply normalizes an available result; unavailable results pass through untouched.
func (n Normalizer) Apply(r provider.Result) provider.Result {
    if !r.Available() { return r }
    return provider.Available(n.Normalize(r.Value))
}
