package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxImageSize = 10 << 20 // 10 MiB

// handleUploadRecipeImage stores a multipart image in the blob bucket and
// records its public URL on the recipe. Costing is untouched either way.
func (s *server) handleUploadRecipeImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	ownerID := ownerIDFrom(r)

	// Confirm ownership before touching the bucket.
	if _, err := s.recipes.Get(r.Context(), ownerID, id); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("recipes/%d/%s%s", id, uuid.NewString(), filepath.Ext(header.Filename))
	url, err := s.images.Put(r.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "image upload failed")
		return
	}

	if err := s.recipes.SetImageURL(r.Context(), ownerID, id, url); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"image_url": url})
}
