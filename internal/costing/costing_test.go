package costing

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/margofoods/costmanager/internal/units"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestCostLine_FlourScenario(t *testing.T) {
	cat := units.NewCatalog()

	// Flour at 2.00 per kilogram is 0.002 per gram.
	flour := PricedIngredient{Unit: "gram", CostPerUnit: 0.002}

	line, err := CostLine(cat, flour, 500, "gram")
	if err != nil {
		t.Fatalf("CostLine returned error: %v", err)
	}

	nearlyEqual(t, "quantityInBaseUnit", line.QuantityInBaseUnit, 500)
	nearlyEqual(t, "costContribution", line.CostContribution, 1.00)
}

func TestCostLine_ConvertsRequestedUnit(t *testing.T) {
	cat := units.NewCatalog()
	flour := PricedIngredient{Unit: "gram", CostPerUnit: 0.002}

	line, err := CostLine(cat, flour, 0.5, "kilogram")
	if err != nil {
		t.Fatalf("CostLine returned error: %v", err)
	}

	nearlyEqual(t, "quantityInBaseUnit", line.QuantityInBaseUnit, 500)
	nearlyEqual(t, "costContribution", line.CostContribution, 1.00)
}

func TestCostLine_EmptyUnitMeansIngredientUnit(t *testing.T) {
	cat := units.NewCatalog()
	eggs := PricedIngredient{Unit: "piece", CostPerUnit: 0.25}

	line, err := CostLine(cat, eggs, 4, "")
	if err != nil {
		t.Fatalf("CostLine returned error: %v", err)
	}

	nearlyEqual(t, "quantityInBaseUnit", line.QuantityInBaseUnit, 4)
	nearlyEqual(t, "costContribution", line.CostContribution, 1.00)
}

func TestCostLine_RejectsNonPositiveQuantity(t *testing.T) {
	cat := units.NewCatalog()
	flour := PricedIngredient{Unit: "gram", CostPerUnit: 0.002}

	for _, q := range []float64{0, -1, -0.001} {
		if _, err := CostLine(cat, flour, q, "gram"); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %v: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
}

func TestCostLine_RejectsWrongDimension(t *testing.T) {
	cat := units.NewCatalog()
	flour := PricedIngredient{Unit: "gram", CostPerUnit: 0.002}

	_, err := CostLine(cat, flour, 1, "liter")
	var incompatible *units.IncompatibleUnitsError
	if !errors.As(err, &incompatible) {
		t.Fatalf("expected IncompatibleUnitsError, got %v", err)
	}
}

// The contribution must always equal cost-per-unit times the normalized
// quantity, for any unit sharing the ingredient's dimension.
func TestCostLine_ContributionProperty(t *testing.T) {
	cat := units.NewCatalog()
	rng := rand.New(rand.NewSource(7))

	massUnits := []string{"kilogram", "gram", "pound", "ounce"}

	for i := 0; i < 500; i++ {
		ing := PricedIngredient{Unit: "gram", CostPerUnit: rng.Float64() * 5}
		qty := rng.Float64()*1000 + 1e-6
		unit := massUnits[rng.Intn(len(massUnits))]

		line, err := CostLine(cat, ing, qty, unit)
		if err != nil {
			t.Fatalf("CostLine(%v %s): %v", qty, unit, err)
		}

		normalized, err := cat.ToBase(qty, unit)
		if err != nil {
			t.Fatalf("ToBase(%v %s): %v", qty, unit, err)
		}

		want := ing.CostPerUnit * normalized
		if math.Abs(line.CostContribution-want) > 1e-9*math.Max(1, want) {
			t.Fatalf("contribution %v, want %v (qty=%v unit=%s)", line.CostContribution, want, qty, unit)
		}
	}
}

func TestAggregate_SumsAndMargin(t *testing.T) {
	totals := Aggregate([]float64{1.00}, 5.00)
	nearlyEqual(t, "totalCost", totals.TotalCost, 1.00)
	nearlyEqual(t, "profitMarginPct", totals.ProfitMarginPct, 80.0)
}

func TestAggregate_EmptyLinesAreAllZero(t *testing.T) {
	for _, salePrice := range []float64{0, 5, 12.50, 1000} {
		totals := Aggregate(nil, salePrice)
		nearlyEqual(t, "totalCost", totals.TotalCost, 0)
		nearlyEqual(t, "profitMarginPct", totals.ProfitMarginPct, 0)
	}
}

func TestAggregate_ZeroSalePriceGuardsDivision(t *testing.T) {
	totals := Aggregate([]float64{3, 4.5}, 0)
	nearlyEqual(t, "totalCost", totals.TotalCost, 7.5)
	nearlyEqual(t, "profitMarginPct", totals.ProfitMarginPct, 0)
}

func TestAggregate_MarginCanBeNegative(t *testing.T) {
	totals := Aggregate([]float64{10}, 4)
	nearlyEqual(t, "totalCost", totals.TotalCost, 10)
	nearlyEqual(t, "profitMarginPct", totals.ProfitMarginPct, -150)
}
