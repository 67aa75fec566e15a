package units

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestConvert_KnownFactors(t *testing.T) {
	cat := NewCatalog()

	tests := []struct {
		name     string
		quantity float64
		from     string
		to       string
		want     float64
	}{
		{"kilogram to gram", 2, "kilogram", "gram", 2000},
		{"gram to kilogram", 500, "gram", "kilogram", 0.5},
		{"pound to gram", 1, "pound", "gram", 453.592},
		{"ounce to gram", 2, "ounce", "gram", 56.699},
		{"liter to milliliter", 1.5, "liter", "milliliter", 1500},
		{"gallon to liter", 1, "gallon", "liter", 3.78541},
		{"dozen to piece", 2, "dozen", "piece", 24},
		{"six-pack to piece", 3, "six-pack", "piece", 18},
		{"same unit", 42, "gram", "gram", 42},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cat.Convert(tc.quantity, tc.from, tc.to)
			if err != nil {
				t.Fatalf("Convert returned error: %v", err)
			}
			nearlyEqual(t, "converted quantity", got, tc.want)
		})
	}
}

func TestConvert_IncompatibleDimensions(t *testing.T) {
	cat := NewCatalog()

	_, err := cat.Convert(1, "gram", "milliliter")
	var incompatible *IncompatibleUnitsError
	if !errors.As(err, &incompatible) {
		t.Fatalf("expected IncompatibleUnitsError, got %v", err)
	}
	if incompatible.From.Tag != "gram" || incompatible.To.Tag != "milliliter" {
		t.Fatalf("unexpected error detail: %+v", incompatible)
	}
}

func TestConvert_UnknownUnit(t *testing.T) {
	cat := NewCatalog()

	_, err := cat.Convert(1, "stone", "gram")
	var unknown *UnknownUnitError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownUnitError, got %v", err)
	}
	if unknown.Tag != "stone" {
		t.Fatalf("unexpected tag %q", unknown.Tag)
	}
}

func TestToBase(t *testing.T) {
	cat := NewCatalog()

	got, err := cat.ToBase(0.5, "kilogram")
	if err != nil {
		t.Fatalf("ToBase returned error: %v", err)
	}
	nearlyEqual(t, "0.5 kilogram in grams", got, 500)

	got, err = cat.ToBase(2, "dozen")
	if err != nil {
		t.Fatalf("ToBase returned error: %v", err)
	}
	nearlyEqual(t, "2 dozen in pieces", got, 24)
}

func TestCatalog_ExactlyOneBaseUnitPerDimension(t *testing.T) {
	cat := NewCatalog()

	counts := map[Dimension]int{}
	for _, tag := range cat.Tags() {
		u, _ := cat.Lookup(tag)
		if u.FactorToBase == 1 {
			counts[u.Dimension]++
		}
	}

	for _, dim := range []Dimension{Mass, Volume, Count} {
		if counts[dim] != 1 {
			t.Fatalf("dimension %s has %d base units, want 1", dim, counts[dim])
		}
		if base := cat.Base(dim); base.FactorToBase != 1 {
			t.Fatalf("Base(%s) has factor %v, want 1", dim, base.FactorToBase)
		}
	}
}

// Converting there and back must return the original quantity for any pair of
// units in the same dimension.
func TestConvert_RoundTripProperty(t *testing.T) {
	cat := NewCatalog()
	rng := rand.New(rand.NewSource(1))

	byDimension := map[Dimension][]string{}
	for _, tag := range cat.Tags() {
		u, _ := cat.Lookup(tag)
		byDimension[u.Dimension] = append(byDimension[u.Dimension], tag)
	}

	for dim, tags := range byDimension {
		for i := 0; i < 200; i++ {
			from := tags[rng.Intn(len(tags))]
			to := tags[rng.Intn(len(tags))]
			q := rng.Float64()*10000 + 1e-6

			there, err := cat.Convert(q, from, to)
			if err != nil {
				t.Fatalf("%s: Convert(%v, %s, %s): %v", dim, q, from, to, err)
			}
			back, err := cat.Convert(there, to, from)
			if err != nil {
				t.Fatalf("%s: Convert back(%v, %s, %s): %v", dim, there, to, from, err)
			}

			if math.Abs(back-q) > 1e-9*math.Max(1, q) {
				t.Fatalf("%s: round trip %s->%s->%s of %v gave %v", dim, from, to, from, q, back)
			}
		}
	}
}
