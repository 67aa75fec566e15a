// Package seed provisions the minimum data a fresh deployment needs: the
// admin account and a small starter ingredient catalog. Running it again is
// a no-op.
package seed

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type starterIngredient struct {
	name        string
	unit        string
	costPerUnit float64
}

// Starter catalog, priced per base unit (gram / milliliter / piece).
var starterIngredients = []starterIngredient{
	{name: "Flour", unit: "gram", costPerUnit: 0.002},
	{name: "Milk", unit: "milliliter", costPerUnit: 0.001},
	{name: "Eggs", unit: "piece", costPerUnit: 0.25},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	adminID, err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if adminID != 0 {
		if err := seedStarterIngredients(tx, adminID, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// seedAdmin ensures the admin account exists and returns its id. A zero id
// means no admin is configured.
func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) (int64, error) {
	if email == "" || password == "" {
		return 0, nil
	}

	var id int64
	err := tx.QueryRow(`SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check admin user existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash admin password: %w", err)
	}

	res, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash))
	if err != nil {
		return 0, fmt.Errorf("insert admin user: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("admin insert id: %w", err)
	}

	stats.Inserts++
	return id, nil
}

func seedStarterIngredients(tx *sql.Tx, ownerID int64, stats *Stats) error {
	for _, ing := range starterIngredients {
		var exists bool
		if err := tx.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM ingredients WHERE owner_id = ? AND name = ? LIMIT 1)
		`, ownerID, ing.name).Scan(&exists); err != nil {
			return fmt.Errorf("check starter ingredient existence: %w", err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO ingredients (owner_id, name, unit, cost_per_unit)
			VALUES (?, ?, ?, ?)
		`, ownerID, ing.name, ing.unit, ing.costPerUnit); err != nil {
			return fmt.Errorf("insert starter ingredient %s: %w", ing.name, err)
		}
		stats.Inserts++
	}

	return nil
}
