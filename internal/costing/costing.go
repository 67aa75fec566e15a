// Package costing contains the pure arithmetic that prices a recipe: the
// per-line cost calculation and the roll-up of line contributions into a
// total cost and profit margin. Nothing here touches storage, so both
// functions are safe to call concurrently.
package costing

import (
	"errors"

	"github.com/margofoods/costmanager/internal/units"
)

// ErrInvalidQuantity rejects non-positive requested quantities.
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// PricedIngredient is the costing view of an ingredient: the unit its price
// is expressed in and the cost of one such unit.
type PricedIngredient struct {
	Unit        string
	CostPerUnit float64
}

// LineCost is the result of pricing one recipe line. QuantityInBaseUnit is the
// requested quantity normalized to the ingredient's own unit; CostContribution
// is the money that line adds to the recipe, frozen at save time.
type LineCost struct {
	QuantityInBaseUnit float64
	CostContribution   float64
}

// CostLine prices a single recipe line. An empty requestedUnit means the
// quantity is already expressed in the ingredient's own unit. A requested
// unit from another dimension fails with *units.IncompatibleUnitsError.
func CostLine(cat *units.Catalog, ing PricedIngredient, quantity float64, requestedUnit string) (LineCost, error) {
	if quantity <= 0 {
		return LineCost{}, ErrInvalidQuantity
	}

	normalized := quantity
	if requestedUnit != "" && requestedUnit != ing.Unit {
		var err error
		normalized, err = cat.Convert(quantity, requestedUnit, ing.Unit)
		if err != nil {
			return LineCost{}, err
		}
	}

	return LineCost{
		QuantityInBaseUnit: normalized,
		CostContribution:   ing.CostPerUnit * normalized,
	}, nil
}

// Totals is the aggregated cost picture of a recipe.
type Totals struct {
	TotalCost       float64
	ProfitMarginPct float64
}

// Aggregate sums line contributions and derives the profit margin from the
// sale price. The margin is not clamped: a loss-making recipe yields a
// negative margin. A zero sale price yields a zero margin rather than a
// division by zero, and a recipe with no lines has no margin at all.
func Aggregate(contributions []float64, salePrice float64) Totals {
	if len(contributions) == 0 {
		return Totals{}
	}

	total := 0.0
	for _, c := range contributions {
		total += c
	}

	margin := 0.0
	if salePrice > 0 {
		margin = (salePrice - total) / salePrice * 100
	}

	return Totals{TotalCost: total, ProfitMarginPct: margin}
}
