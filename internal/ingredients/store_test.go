package ingredients

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/margofoods/costmanager/internal/db"
	"github.com/margofoods/costmanager/internal/migrations"
	"github.com/margofoods/costmanager/internal/units"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewStore(database, units.NewCatalog()), database
}

func seedOwner(t *testing.T, database *sql.DB, email string) int64 {
	t.Helper()

	res, err := database.Exec(`INSERT INTO users (email, password_hash) VALUES (?, 'x')`, email)
	if err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("owner insert id: %v", err)
	}
	return id
}

func TestCreateAndListSortsByName(t *testing.T) {
	store, database := newTestStore(t)
	owner := seedOwner(t, database, "owner@example.com")
	ctx := context.Background()

	for _, in := range []Input{
		{Name: "Sugar", Unit: "gram", CostPerUnit: 0.001},
		{Name: "Butter", Unit: "gram", CostPerUnit: 0.009},
		{Name: "Milk", Unit: "milliliter", CostPerUnit: 0.001},
	} {
		if _, err := store.Create(ctx, owner, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	list, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 ingredients, got %d", len(list))
	}
	if list[0].Name != "Butter" || list[1].Name != "Milk" || list[2].Name != "Sugar" {
		t.Fatalf("ingredients not sorted by name: %+v", list)
	}
}

func TestCreateRejectsUnknownUnit(t *testing.T) {
	store, database := newTestStore(t)
	owner := seedOwner(t, database, "owner@example.com")

	_, err := store.Create(context.Background(), owner, Input{Name: "Saffron", Unit: "pinch", CostPerUnit: 1})
	var unknown *units.UnknownUnitError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownUnitError, got %v", err)
	}
}

func TestCreateRejectsNegativeCost(t *testing.T) {
	store, database := newTestStore(t)
	owner := seedOwner(t, database, "owner@example.com")

	_, err := store.Create(context.Background(), owner, Input{Name: "Flour", Unit: "gram", CostPerUnit: -0.5})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateIsScopedToOwner(t *testing.T) {
	store, database := newTestStore(t)
	owner := seedOwner(t, database, "owner@example.com")
	other := seedOwner(t, database, "other@example.com")
	ctx := context.Background()

	ing, err := store.Create(ctx, owner, Input{Name: "Flour", Unit: "gram", CostPerUnit: 0.002})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = store.Update(ctx, other, ing.ID, Input{Name: "Hijacked", Unit: "gram", CostPerUnit: 9})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}

	updated, err := store.Update(ctx, owner, ing.ID, Input{Name: "Bread Flour", Unit: "gram", CostPerUnit: 0.003})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Bread Flour" || updated.CostPerUnit != 0.003 {
		t.Fatalf("unexpected updated ingredient: %+v", updated)
	}
}

func TestDeleteRemovesOnlyOwnRow(t *testing.T) {
	store, database := newTestStore(t)
	owner := seedOwner(t, database, "owner@example.com")
	other := seedOwner(t, database, "other@example.com")
	ctx := context.Background()

	ing, err := store.Create(ctx, owner, Input{Name: "Flour", Unit: "gram", CostPerUnit: 0.002})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, other, ing.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := store.Delete(ctx, owner, ing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, owner, ing.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteKeepsRecipeLineSnapshot(t *testing.T) {
	store, database := newTestStore(t)
	owner := seedOwner(t, database, "owner@example.com")
	ctx := context.Background()

	ing, err := store.Create(ctx, owner, Input{Name: "Flour", Unit: "gram", CostPerUnit: 0.002})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := database.Exec(`
		INSERT INTO recipes (owner_id, name, sale_price, total_cost, profit_margin_pct)
		VALUES (?, 'Bread', 5, 1, 80)
	`, owner)
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	recipeID, _ := res.LastInsertId()

	if _, err := database.Exec(`
		INSERT INTO recipe_lines (recipe_id, ingredient_id, quantity_in_base_unit, cost_contribution)
		VALUES (?, ?, 500, 1.0)
	`, recipeID, ing.ID); err != nil {
		t.Fatalf("seed recipe line: %v", err)
	}

	if err := store.Delete(ctx, owner, ing.ID); err != nil {
		t.Fatalf("delete ingredient: %v", err)
	}

	var ingredientID sql.NullInt64
	var contribution float64
	if err := database.QueryRow(`
		SELECT ingredient_id, cost_contribution FROM recipe_lines WHERE recipe_id = ?
	`, recipeID).Scan(&ingredientID, &contribution); err != nil {
		t.Fatalf("query surviving line: %v", err)
	}
	if ingredientID.Valid {
		t.Fatalf("expected ingredient reference to be nulled, got %v", ingredientID.Int64)
	}
	if contribution != 1.0 {
		t.Fatalf("expected frozen contribution 1.0, got %v", contribution)
	}
}
