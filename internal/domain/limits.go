package domain

// Upper bounds for client-supplied numbers. Quantities fit the INT columns and
// MaxQuantity*MaxPriceCents stays well inside int64.
const (
	MaxQuantity   = 10000
	MaxPriceCents = int64(1_000_000_000_000)
)

// MaxAmount is MaxPriceCents in major units.
const MaxAmount = float64(MaxPriceCents / 100)
