package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/margofoods/costmanager/internal/costing"
	"github.com/margofoods/costmanager/internal/ingredients"
	"github.com/margofoods/costmanager/internal/recipes"
	"github.com/margofoods/costmanager/internal/units"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses. Unit
// and quantity problems are the caller's fault; unknown failures are
// persistence errors and stay opaque.
func writeDomainError(w http.ResponseWriter, err error) {
	var incompatible *units.IncompatibleUnitsError
	var unknownUnit *units.UnknownUnitError

	switch {
	case errors.Is(err, recipes.ErrNotFound):
		writeError(w, http.StatusNotFound, "recipe not found")
	case errors.Is(err, ingredients.ErrNotFound):
		writeError(w, http.StatusNotFound, "ingredient not found")
	case errors.Is(err, costing.ErrInvalidQuantity), errors.Is(err, ingredients.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &incompatible), errors.As(err, &unknownUnit):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
