package main

import (
	"errors"
	"net/http"

	"github.com/margofoods/costmanager/internal/finance"
)

type financialsRequest struct {
	PeriodDate      string  `json:"period_date"`
	Payroll         float64 `json:"payroll"`
	Rent            float64 `json:"rent"`
	Utilities       float64 `json:"utilities"`
	OtherFixedCosts float64 `json:"other_fixed_costs"`
	TotalSales      float64 `json:"total_sales"`
}

func (s *server) handleListFinancials(w http.ResponseWriter, r *http.Request) {
	list, err := s.finance.List(r.Context(), ownerIDFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleUpsertFinancials(w http.ResponseWriter, r *http.Request) {
	var req financialsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PeriodDate == "" {
		writeError(w, http.StatusBadRequest, "period_date is required")
		return
	}
	if req.Payroll < 0 || req.Rent < 0 || req.Utilities < 0 || req.OtherFixedCosts < 0 || req.TotalSales < 0 {
		writeError(w, http.StatusBadRequest, "financial amounts must be zero or greater")
		return
	}

	period, err := s.finance.Upsert(r.Context(), ownerIDFrom(r), finance.PeriodInput{
		PeriodDate:      req.PeriodDate,
		Payroll:         req.Payroll,
		Rent:            req.Rent,
		Utilities:       req.Utilities,
		OtherFixedCosts: req.OtherFixedCosts,
		TotalSales:      req.TotalSales,
	})
	if errors.Is(err, finance.ErrInvalidPeriodDate) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, period)
}
