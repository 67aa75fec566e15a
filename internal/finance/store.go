// Package finance stores per-month fixed-cost records and derives the
// venue-level dashboard snapshot: fixed costs, average recipe margin,
// break-even point and the recent history series.
package finance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriodDate rejects period dates that are not a parseable month.
var ErrInvalidPeriodDate = errors.New("invalid period date")

// Period is one calendar month's financial record for one owner. FixedCosts
// is derived: payroll + rent + utilities + other fixed costs.
type Period struct {
	ID              int64   `json:"id"`
	OwnerID         int64   `json:"-"`
	PeriodDate      string  `json:"period_date"`
	Payroll         float64 `json:"payroll"`
	Rent            float64 `json:"rent"`
	Utilities       float64 `json:"utilities"`
	OtherFixedCosts float64 `json:"other_fixed_costs"`
	TotalSales      float64 `json:"total_sales"`
}

// FixedCosts sums the period's fixed-cost fields.
func (p Period) FixedCosts() float64 {
	return p.Payroll + p.Rent + p.Utilities + p.OtherFixedCosts
}

// PeriodInput carries an upsert payload. PeriodDate accepts "2006-01-02" or
// "2006-01" and is normalized to the first of the month, the upsert key.
type PeriodInput struct {
	PeriodDate      string
	Payroll         float64
	Rent            float64
	Utilities       float64
	OtherFixedCosts float64
	TotalSales      float64
}

// TopProduct is one entry of the dashboard's best-margin list.
type TopProduct struct {
	Name            string  `json:"name"`
	ProfitMarginPct float64 `json:"profit_margin_pct"`
	SalePrice       float64 `json:"sale_price"`
}

// HistoryPoint is one month of the dashboard trend series. BreakEvenPoint is
// recomputed from the current average margin, not the margin the venue had
// that month: margin history is not retained, a documented limitation.
type HistoryPoint struct {
	PeriodDate     string  `json:"period_date"`
	TotalSales     float64 `json:"total_sales"`
	FixedCosts     float64 `json:"fixed_costs"`
	BreakEvenPoint float64 `json:"break_even_point"`
}

// Snapshot is the venue-wide business-health picture served to the dashboard.
type Snapshot struct {
	CurrentMonth   string         `json:"currentMonth,omitempty"`
	FixedCosts     float64        `json:"fixedCosts"`
	AvgMargin      float64        `json:"avgMargin"`
	BreakEvenPoint float64        `json:"breakEvenPoint"`
	TotalSales     float64        `json:"totalSales"`
	TopProducts    []TopProduct   `json:"topProducts"`
	History        []HistoryPoint `json:"history"`
}

// Store persists financial periods and computes snapshots.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// normalizePeriodDate pins a submitted date to the first of its month.
func normalizePeriodDate(raw string) (string, error) {
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriodDate, raw)
}

// Upsert writes the month's record, overwriting a previous submission for
// the same (owner, month) rather than duplicating it.
func (s *Store) Upsert(ctx context.Context, ownerID int64, in PeriodInput) (Period, error) {
	date, err := normalizePeriodDate(in.PeriodDate)
	if err != nil {
		return Period{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO financial_periods (owner_id, period_date, payroll, rent, utilities, other_fixed_costs, total_sales)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, period_date) DO UPDATE SET
			payroll = excluded.payroll,
			rent = excluded.rent,
			utilities = excluded.utilities,
			other_fixed_costs = excluded.other_fixed_costs,
			total_sales = excluded.total_sales
	`, ownerID, date, in.Payroll, in.Rent, in.Utilities, in.OtherFixedCosts, in.TotalSales)
	if err != nil {
		return Period{}, fmt.Errorf("upsert financial period: %w", err)
	}

	var p Period
	err = s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, period_date, payroll, rent, utilities, other_fixed_costs, total_sales
		FROM financial_periods
		WHERE owner_id = ? AND period_date = ?
	`, ownerID, date).Scan(&p.ID, &p.OwnerID, &p.PeriodDate, &p.Payroll, &p.Rent, &p.Utilities, &p.OtherFixedCosts, &p.TotalSales)
	if err != nil {
		return Period{}, fmt.Errorf("query upserted period: %w", err)
	}

	return p, nil
}

// List returns the owner's periods, newest first.
func (s *Store) List(ctx context.Context, ownerID int64) ([]Period, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, period_date, payroll, rent, utilities, other_fixed_costs, total_sales
		FROM financial_periods
		WHERE owner_id = ?
		ORDER BY period_date DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query financial periods: %w", err)
	}
	defer rows.Close()

	list := make([]Period, 0)
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.PeriodDate, &p.Payroll, &p.Rent, &p.Utilities, &p.OtherFixedCosts, &p.TotalSales); err != nil {
			return nil, fmt.Errorf("scan financial period: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financial periods: %w", err)
	}

	return list, nil
}

// breakEven is the sales volume at which margin-weighted revenue offsets the
// fixed costs. Zero when the average margin is not positive.
func breakEven(fixedCosts, avgMargin float64) float64 {
	if avgMargin <= 0 {
		return 0
	}
	return fixedCosts / (avgMargin / 100)
}

// Snapshot assembles the dashboard data for one owner. A venue with no
// financial records and no recipes gets an all-zero snapshot, never an error.
func (s *Store) Snapshot(ctx context.Context, ownerID int64) (Snapshot, error) {
	snap := Snapshot{
		TopProducts: make([]TopProduct, 0, 5),
		History:     make([]HistoryPoint, 0, 6),
	}

	var latest Period
	err := s.db.QueryRowContext(ctx, `
		SELECT period_date, payroll, rent, utilities, other_fixed_costs, total_sales
		FROM financial_periods
		WHERE owner_id = ?
		ORDER BY period_date DESC
		LIMIT 1
	`, ownerID).Scan(&latest.PeriodDate, &latest.Payroll, &latest.Rent, &latest.Utilities, &latest.OtherFixedCosts, &latest.TotalSales)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("query latest financial period: %w", err)
	}

	snap.CurrentMonth = latest.PeriodDate
	snap.FixedCosts = latest.FixedCosts()
	snap.TotalSales = latest.TotalSales

	// Average of an empty recipe set is 0 by definition, not NULL.
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(profit_margin_pct), 0)
		FROM recipes
		WHERE owner_id = ?
	`, ownerID).Scan(&snap.AvgMargin); err != nil {
		return Snapshot{}, fmt.Errorf("query average margin: %w", err)
	}

	snap.BreakEvenPoint = breakEven(snap.FixedCosts, snap.AvgMargin)

	// Ties on margin resolve by insertion order to keep the list stable.
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, profit_margin_pct, sale_price
		FROM recipes
		WHERE owner_id = ?
		ORDER BY profit_margin_pct DESC, id ASC
		LIMIT 5
	`, ownerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.Name, &tp.ProfitMarginPct, &tp.SalePrice); err != nil {
			return Snapshot{}, fmt.Errorf("scan top product: %w", err)
		}
		snap.TopProducts = append(snap.TopProducts, tp)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate top products: %w", err)
	}

	// The six most recent months, presented oldest to newest for charting.
	histRows, err := s.db.QueryContext(ctx, `
		SELECT period_date, total_sales, payroll + rent + utilities + other_fixed_costs AS fixed_costs
		FROM (
			SELECT period_date, total_sales, payroll, rent, utilities, other_fixed_costs
			FROM financial_periods
			WHERE owner_id = ?
			ORDER BY period_date DESC
			LIMIT 6
		)
		ORDER BY period_date ASC
	`, ownerID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query period history: %w", err)
	}
	defer histRows.Close()

	for histRows.Next() {
		var h HistoryPoint
		if err := histRows.Scan(&h.PeriodDate, &h.TotalSales, &h.FixedCosts); err != nil {
			return Snapshot{}, fmt.Errorf("scan period history: %w", err)
		}
		h.BreakEvenPoint = breakEven(h.FixedCosts, snap.AvgMargin)
		snap.History = append(snap.History, h)
	}
	if err := histRows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate period history: %w", err)
	}

	return snap, nil
}
