// Package ingredients manages the per-owner ingredient list. Every query is
// scoped by owner id; one user can never see or touch another user's rows.
package ingredients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/margofoods/costmanager/internal/units"
)

// ErrNotFound is returned when an ingredient does not exist or belongs to a
// different owner. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("ingredient not found")

// ErrInvalidInput wraps validation failures on caller-supplied fields.
var ErrInvalidInput = errors.New("invalid ingredient")

// Ingredient is one priced ingredient owned by a user. CostPerUnit is the
// cost of one Unit (e.g. 0.002 per gram).
type Ingredient struct {
	ID          int64   `json:"id"`
	OwnerID     int64   `json:"-"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Supplier    string  `json:"supplier,omitempty"`
}

// Input carries the caller-editable fields of an ingredient.
type Input struct {
	Name        string
	Unit        string
	CostPerUnit float64
	Supplier    string
}

// Store persists ingredients.
type Store struct {
	db      *sql.DB
	catalog *units.Catalog
}

func NewStore(db *sql.DB, catalog *units.Catalog) *Store {
	return &Store{db: db, catalog: catalog}
}

func (s *Store) validate(in Input) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, ok := s.catalog.Lookup(in.Unit); !ok {
		return &units.UnknownUnitError{Tag: in.Unit}
	}
	if in.CostPerUnit < 0 {
		return fmt.Errorf("%w: cost_per_unit must be zero or greater", ErrInvalidInput)
	}
	return nil
}

// List returns the owner's ingredients sorted by name.
func (s *Store) List(ctx context.Context, ownerID int64) ([]Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, unit, cost_per_unit, COALESCE(supplier, '')
		FROM ingredients
		WHERE owner_id = ?
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	list := make([]Ingredient, 0)
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.OwnerID, &ing.Name, &ing.Unit, &ing.CostPerUnit, &ing.Supplier); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	return list, nil
}

// Get returns one ingredient scoped to the owner.
func (s *Store) Get(ctx context.Context, ownerID, id int64) (Ingredient, error) {
	var ing Ingredient
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, unit, cost_per_unit, COALESCE(supplier, '')
		FROM ingredients
		WHERE id = ? AND owner_id = ?
	`, id, ownerID).Scan(&ing.ID, &ing.OwnerID, &ing.Name, &ing.Unit, &ing.CostPerUnit, &ing.Supplier)
	if errors.Is(err, sql.ErrNoRows) {
		return Ingredient{}, ErrNotFound
	}
	if err != nil {
		return Ingredient{}, fmt.Errorf("query ingredient: %w", err)
	}
	return ing, nil
}

// Create inserts a new ingredient for the owner.
func (s *Store) Create(ctx context.Context, ownerID int64, in Input) (Ingredient, error) {
	if err := s.validate(in); err != nil {
		return Ingredient{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ingredients (owner_id, name, unit, cost_per_unit, supplier)
		VALUES (?, ?, ?, ?, ?)
	`, ownerID, in.Name, in.Unit, in.CostPerUnit, in.Supplier)
	if err != nil {
		return Ingredient{}, fmt.Errorf("insert ingredient: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Ingredient{}, fmt.Errorf("ingredient insert id: %w", err)
	}

	return Ingredient{ID: id, OwnerID: ownerID, Name: in.Name, Unit: in.Unit, CostPerUnit: in.CostPerUnit, Supplier: in.Supplier}, nil
}

// Update rewrites an ingredient's fields. Changing the price never touches
// existing recipe lines: their cost contributions are save-time snapshots.
func (s *Store) Update(ctx context.Context, ownerID, id int64, in Input) (Ingredient, error) {
	if err := s.validate(in); err != nil {
		return Ingredient{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE ingredients
		SET name = ?, unit = ?, cost_per_unit = ?, supplier = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner_id = ?
	`, in.Name, in.Unit, in.CostPerUnit, in.Supplier, id, ownerID)
	if err != nil {
		return Ingredient{}, fmt.Errorf("update ingredient: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Ingredient{}, fmt.Errorf("update ingredient rows affected: %w", err)
	}
	if affected == 0 {
		return Ingredient{}, ErrNotFound
	}

	return Ingredient{ID: id, OwnerID: ownerID, Name: in.Name, Unit: in.Unit, CostPerUnit: in.CostPerUnit, Supplier: in.Supplier}, nil
}

// Delete removes an ingredient. Recipe lines that reference it keep their
// frozen cost contribution; only the reference is nulled by the schema.
func (s *Store) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ingredient rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
