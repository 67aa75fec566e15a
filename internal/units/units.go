// Package units provides the static catalog of measurement units used to
// normalize ingredient quantities. Every unit belongs to one dimension (mass,
// volume or count) and carries a conversion factor to that dimension's base
// unit: gram, milliliter or piece.
package units

import "fmt"

// Dimension classifies units that can be converted into each other.
type Dimension string

const (
	Mass   Dimension = "mass"
	Volume Dimension = "volume"
	Count  Dimension = "count"
)

// Unit is a single measurement unit. FactorToBase is how many base units one
// of this unit represents (kilogram -> 1000 grams).
type Unit struct {
	Tag          string
	Dimension    Dimension
	FactorToBase float64
}

// IncompatibleUnitsError reports a conversion between different dimensions.
type IncompatibleUnitsError struct {
	From Unit
	To   Unit
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("cannot convert %s (%s) to %s (%s)", e.From.Tag, e.From.Dimension, e.To.Tag, e.To.Dimension)
}

// UnknownUnitError reports a unit tag missing from the catalog.
type UnknownUnitError struct {
	Tag string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q", e.Tag)
}

// Catalog is the immutable set of recognized units. It is built once at
// startup and shared by reference; nothing mutates it afterwards.
type Catalog struct {
	units map[string]Unit
	bases map[Dimension]Unit
}

// NewCatalog builds the fixed unit table.
func NewCatalog() *Catalog {
	all := []Unit{
		{Tag: "kilogram", Dimension: Mass, FactorToBase: 1000},
		{Tag: "gram", Dimension: Mass, FactorToBase: 1},
		{Tag: "pound", Dimension: Mass, FactorToBase: 453.592},
		{Tag: "ounce", Dimension: Mass, FactorToBase: 28.3495},

		{Tag: "liter", Dimension: Volume, FactorToBase: 1000},
		{Tag: "milliliter", Dimension: Volume, FactorToBase: 1},
		{Tag: "gallon", Dimension: Volume, FactorToBase: 3785.41},

		{Tag: "piece", Dimension: Count, FactorToBase: 1},
		{Tag: "dozen", Dimension: Count, FactorToBase: 12},
		{Tag: "six-pack", Dimension: Count, FactorToBase: 6},
	}

	c := &Catalog{
		units: make(map[string]Unit, len(all)),
		bases: make(map[Dimension]Unit, 3),
	}
	for _, u := range all {
		c.units[u.Tag] = u
		if u.FactorToBase == 1 {
			c.bases[u.Dimension] = u
		}
	}
	return c
}

// Lookup returns the unit for tag, if recognized.
func (c *Catalog) Lookup(tag string) (Unit, bool) {
	u, ok := c.units[tag]
	return u, ok
}

// Base returns the base unit of a dimension (factor 1).
func (c *Catalog) Base(d Dimension) Unit {
	return c.bases[d]
}

// Tags returns all recognized unit tags. Order is unspecified.
func (c *Catalog) Tags() []string {
	tags := make([]string, 0, len(c.units))
	for tag := range c.units {
		tags = append(tags, tag)
	}
	return tags
}

// Convert converts quantity from one unit to another within the same
// dimension. It returns an UnknownUnitError for unrecognized tags and an
// IncompatibleUnitsError when the dimensions differ.
func (c *Catalog) Convert(quantity float64, fromTag, toTag string) (float64, error) {
	from, ok := c.units[fromTag]
	if !ok {
		return 0, &UnknownUnitError{Tag: fromTag}
	}
	to, ok := c.units[toTag]
	if !ok {
		return 0, &UnknownUnitError{Tag: toTag}
	}
	if from.Dimension != to.Dimension {
		return 0, &IncompatibleUnitsError{From: from, To: to}
	}
	return quantity * from.FactorToBase / to.FactorToBase, nil
}

// ToBase converts quantity expressed in the given unit to the base unit of
// that unit's dimension.
func (c *Catalog) ToBase(quantity float64, tag string) (float64, error) {
	u, ok := c.units[tag]
	if !ok {
		return 0, &UnknownUnitError{Tag: tag}
	}
	return c.Convert(quantity, tag, c.bases[u.Dimension].Tag)
}
