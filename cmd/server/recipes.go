package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/margofoods/costmanager/internal/recipes"
)

type recipeLineRequest struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type recipeRequest struct {
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	PrepTimeMinutes int                 `json:"prep_time_minutes"`
	SalePrice       float64             `json:"sale_price"`
	Ingredients     []recipeLineRequest `json:"ingredients"`
}

func (req recipeRequest) draft() recipes.Draft {
	d := recipes.Draft{
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		PrepTimeMinutes: req.PrepTimeMinutes,
		SalePrice:       req.SalePrice,
	}
	for _, line := range req.Ingredients {
		d.Ingredients = append(d.Ingredients, recipes.LineRequest{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			Unit:         strings.TrimSpace(line.Unit),
		})
	}
	return d
}

func (req recipeRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.SalePrice < 0 {
		return "sale_price must be zero or greater"
	}
	return ""
}

type saveResponse struct {
	ID                   int64   `json:"id"`
	TotalCost            float64 `json:"total_cost"`
	ProfitMarginPct      float64 `json:"profit_margin_pct"`
	SkippedIngredientIDs []int64 `json:"skipped_ingredient_ids,omitempty"`
}

func saveResponseFrom(res recipes.SaveResult) saveResponse {
	return saveResponse{
		ID:                   res.ID,
		TotalCost:            res.TotalCost,
		ProfitMarginPct:      res.ProfitMarginPct,
		SkippedIngredientIDs: res.SkippedIngredientIDs,
	}
}

func (s *server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := s.recipes.List(r.Context(), ownerIDFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	recipe, err := s.recipes.Get(r.Context(), ownerIDFrom(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	start := time.Now()
	res, err := s.recipes.Create(r.Context(), ownerIDFrom(r), req.draft())
	s.observeSave(start, err)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saveResponseFrom(res))
}

func (s *server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	var req recipeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	start := time.Now()
	res, err := s.recipes.Update(r.Context(), ownerIDFrom(r), id, req.draft())
	s.observeSave(start, err)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saveResponseFrom(res))
}

func (s *server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := s.recipes.Delete(r.Context(), ownerIDFrom(r), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "recipe deleted"})
}

func (s *server) observeSave(start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.RecipeSaves.WithLabelValues(outcome).Inc()
	s.metrics.RecipeSaveDuration.Observe(time.Since(start).Seconds())
}
