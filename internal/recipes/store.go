// Package recipes persists recipes and coordinates the save transaction that
// keeps a recipe's stored totals consistent with its ingredient line set.
//
// Every save (create or update) runs inside a single database transaction:
// header write, full line-set replacement, totals recompute. The line set is
// always rewritten as a whole, never patched, so the derived total_cost and
// profit_margin_pct can never drift from the visible lines. Any failure rolls
// the whole save back; no partial state is observable afterwards.
//
// Error contract: ErrNotFound for a missing or foreign recipe,
// costing.ErrInvalidQuantity and *units.IncompatibleUnitsError for bad line
// requests (checked with errors.Is / errors.As). Anything else is a wrapped
// driver error, i.e. a persistence failure.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/margofoods/costmanager/internal/costing"
	"github.com/margofoods/costmanager/internal/units"
)

// ErrNotFound is returned when a recipe does not exist or belongs to a
// different owner.
var ErrNotFound = errors.New("recipe not found")

// LineRequest asks for one ingredient in a recipe. Unit may be empty, in
// which case Quantity is taken in the ingredient's own unit; otherwise it
// must share the ingredient's dimension.
type LineRequest struct {
	IngredientID int64
	Quantity     float64
	Unit         string
}

// Draft carries the caller-editable recipe fields for a save.
type Draft struct {
	Name            string
	Description     string
	PrepTimeMinutes int
	SalePrice       float64
	Ingredients     []LineRequest
}

// SaveResult reports the outcome of a committed save. SkippedIngredientIDs
// lists referenced ingredients that no longer existed at save time; their
// cost is absent from TotalCost. The save still succeeds, but the caller is
// told which lines were dropped instead of being left to guess.
type SaveResult struct {
	ID                   int64
	TotalCost            float64
	ProfitMarginPct      float64
	SkippedIngredientIDs []int64
}

// Line is one stored recipe line. IngredientID is zero when the ingredient
// was deleted after the save; the frozen cost contribution remains.
type Line struct {
	ID                 int64   `json:"id"`
	IngredientID       int64   `json:"ingredient_id,omitempty"`
	IngredientName     string  `json:"name"`
	Unit               string  `json:"unit,omitempty"`
	QuantityInBaseUnit float64 `json:"quantity_in_base_unit"`
	CostContribution   float64 `json:"cost_contribution"`
}

// Recipe is a stored recipe with derived totals.
type Recipe struct {
	ID              int64   `json:"id"`
	OwnerID         int64   `json:"-"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	PrepTimeMinutes int     `json:"prep_time_minutes"`
	SalePrice       float64 `json:"sale_price"`
	TotalCost       float64 `json:"total_cost"`
	ProfitMarginPct float64 `json:"profit_margin_pct"`
	ImageURL        string  `json:"image_url,omitempty"`
	CreatedAt       string  `json:"created_at"`
	Lines           []Line  `json:"ingredients,omitempty"`
}

// Store persists recipes and their line sets.
type Store struct {
	db      *sql.DB
	catalog *units.Catalog
}

func NewStore(db *sql.DB, catalog *units.Catalog) *Store {
	return &Store{db: db, catalog: catalog}
}

// Create saves a new recipe and its priced line set in one transaction.
func (s *Store) Create(ctx context.Context, ownerID int64, d Draft) (SaveResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin recipe save: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (owner_id, name, description, prep_time_minutes, sale_price, total_cost, profit_margin_pct)
		VALUES (?, ?, ?, ?, ?, 0, 0)
	`, ownerID, d.Name, d.Description, d.PrepTimeMinutes, d.SalePrice)
	if err != nil {
		return SaveResult{}, fmt.Errorf("insert recipe header: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return SaveResult{}, fmt.Errorf("recipe insert id: %w", err)
	}

	result, err := s.writeLinesAndTotals(ctx, tx, ownerID, id, d)
	if err != nil {
		return SaveResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit recipe save: %w", err)
	}

	return result, nil
}

// Update rewrites an existing recipe: header fields, full line-set
// replacement, fresh totals. Saving the same draft twice yields identical
// stored state.
func (s *Store) Update(ctx context.Context, ownerID, id int64, d Draft) (SaveResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin recipe save: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE recipes
		SET name = ?, description = ?, prep_time_minutes = ?, sale_price = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
	`, d.Name, d.Description, d.PrepTimeMinutes, d.SalePrice, id, ownerID)
	if err != nil {
		return SaveResult{}, fmt.Errorf("update recipe header: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return SaveResult{}, fmt.Errorf("update recipe rows affected: %w", err)
	}
	if affected == 0 {
		return SaveResult{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_lines WHERE recipe_id = ?`, id); err != nil {
		return SaveResult{}, fmt.Errorf("delete recipe lines: %w", err)
	}

	result, err := s.writeLinesAndTotals(ctx, tx, ownerID, id, d)
	if err != nil {
		return SaveResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit recipe save: %w", err)
	}

	return result, nil
}

// writeLinesAndTotals prices and inserts the requested lines, then stamps the
// aggregated totals on the recipe row. It is the single recompute path shared
// by Create and Update: the derived fields are never written anywhere else.
//
// A referenced ingredient that no longer exists (or belongs to another owner)
// is skipped and reported in the result rather than failing the save; an
// invalid quantity or a unit from the wrong dimension aborts the whole
// transaction.
func (s *Store) writeLinesAndTotals(ctx context.Context, tx *sql.Tx, ownerID, recipeID int64, d Draft) (SaveResult, error) {
	contributions := make([]float64, 0, len(d.Ingredients))
	var skipped []int64

	for _, req := range d.Ingredients {
		var ing costing.PricedIngredient
		err := tx.QueryRowContext(ctx, `
			SELECT unit, cost_per_unit
			FROM ingredients
			WHERE id = ? AND owner_id = ?
		`, req.IngredientID, ownerID).Scan(&ing.Unit, &ing.CostPerUnit)
		if errors.Is(err, sql.ErrNoRows) {
			skipped = append(skipped, req.IngredientID)
			continue
		}
		if err != nil {
			return SaveResult{}, fmt.Errorf("query ingredient %d: %w", req.IngredientID, err)
		}

		line, err := costing.CostLine(s.catalog, ing, req.Quantity, req.Unit)
		if err != nil {
			return SaveResult{}, err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_lines (recipe_id, ingredient_id, quantity_in_base_unit, cost_contribution)
			VALUES (?, ?, ?, ?)
		`, recipeID, req.IngredientID, line.QuantityInBaseUnit, line.CostContribution); err != nil {
			return SaveResult{}, fmt.Errorf("insert recipe line: %w", err)
		}

		contributions = append(contributions, line.CostContribution)
	}

	totals := costing.Aggregate(contributions, d.SalePrice)

	if _, err := tx.ExecContext(ctx, `
		UPDATE recipes
		SET total_cost = ?, profit_margin_pct = ?
		WHERE id = ?
	`, totals.TotalCost, totals.ProfitMarginPct, recipeID); err != nil {
		return SaveResult{}, fmt.Errorf("update recipe totals: %w", err)
	}

	return SaveResult{
		ID:                   recipeID,
		TotalCost:            totals.TotalCost,
		ProfitMarginPct:      totals.ProfitMarginPct,
		SkippedIngredientIDs: skipped,
	}, nil
}

// List returns the owner's recipes, newest first, without lines.
func (s *Store) List(ctx context.Context, ownerID int64) ([]Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, COALESCE(description, ''), prep_time_minutes,
		       sale_price, total_cost, profit_margin_pct, COALESCE(image_url, ''), created_at
		FROM recipes
		WHERE owner_id = ?
		ORDER BY datetime(created_at) DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	list := make([]Recipe, 0)
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.PrepTimeMinutes,
			&r.SalePrice, &r.TotalCost, &r.ProfitMarginPct, &r.ImageURL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}

	return list, nil
}

// Get returns one recipe with its line set, lines joined with the current
// ingredient names where the ingredient still exists.
func (s *Store) Get(ctx context.Context, ownerID, id int64) (Recipe, error) {
	var r Recipe
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, COALESCE(description, ''), prep_time_minutes,
		       sale_price, total_cost, profit_margin_pct, COALESCE(image_url, ''), created_at
		FROM recipes
		WHERE id = ? AND owner_id = ?
	`, id, ownerID).Scan(&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.PrepTimeMinutes,
		&r.SalePrice, &r.TotalCost, &r.ProfitMarginPct, &r.ImageURL, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipe{}, ErrNotFound
	}
	if err != nil {
		return Recipe{}, fmt.Errorf("query recipe: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rl.id, COALESCE(rl.ingredient_id, 0), COALESCE(i.name, '(deleted)'), COALESCE(i.unit, ''),
		       rl.quantity_in_base_unit, rl.cost_contribution
		FROM recipe_lines rl
		LEFT JOIN ingredients i ON i.id = rl.ingredient_id
		WHERE rl.recipe_id = ?
		ORDER BY rl.id ASC
	`, id)
	if err != nil {
		return Recipe{}, fmt.Errorf("query recipe lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.IngredientID, &l.IngredientName, &l.Unit, &l.QuantityInBaseUnit, &l.CostContribution); err != nil {
			return Recipe{}, fmt.Errorf("scan recipe line: %w", err)
		}
		r.Lines = append(r.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Recipe{}, fmt.Errorf("iterate recipe lines: %w", err)
	}

	return r, nil
}

// Delete removes a recipe; its lines go with it via the FK cascade.
func (s *Store) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recipe rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetImageURL attaches an uploaded image URL to a recipe. Image storage is
// independent of costing; a failed upload never touches totals.
func (s *Store) SetImageURL(ctx context.Context, ownerID, id int64, url string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recipes SET image_url = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
	`, url, id, ownerID)
	if err != nil {
		return fmt.Errorf("update recipe image url: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recipe image rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
