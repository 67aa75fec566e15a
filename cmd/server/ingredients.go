package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/margofoods/costmanager/internal/ingredients"
)

type ingredientRequest struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Supplier    string  `json:"supplier"`
}

func (req ingredientRequest) input() ingredients.Input {
	return ingredients.Input{
		Name:        strings.TrimSpace(req.Name),
		Unit:        strings.TrimSpace(req.Unit),
		CostPerUnit: req.CostPerUnit,
		Supplier:    strings.TrimSpace(req.Supplier),
	}
}

func (s *server) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	list, err := s.ingredients.List(r.Context(), ownerIDFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ing, err := s.ingredients.Create(r.Context(), ownerIDFrom(r), req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ing)
}

func (s *server) handleUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ingredient id")
		return
	}

	var req ingredientRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ing, err := s.ingredients.Update(r.Context(), ownerIDFrom(r), id, req.input())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ing)
}

func (s *server) handleDeleteIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ingredient id")
		return
	}

	if err := s.ingredients.Delete(r.Context(), ownerIDFrom(r), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ingredient deleted"})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
