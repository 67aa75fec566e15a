package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/margofoods/costmanager/internal/blob"
	"github.com/margofoods/costmanager/internal/config"
	"github.com/margofoods/costmanager/internal/db"
	"github.com/margofoods/costmanager/internal/finance"
	"github.com/margofoods/costmanager/internal/ingredients"
	"github.com/margofoods/costmanager/internal/metrics"
	"github.com/margofoods/costmanager/internal/migrations"
	"github.com/margofoods/costmanager/internal/recipes"
	"github.com/margofoods/costmanager/internal/seed"
	"github.com/margofoods/costmanager/internal/units"
)

type server struct {
	auth        *authService
	db          *sql.DB
	catalog     *units.Catalog
	ingredients *ingredients.Store
	recipes     *recipes.Store
	finance     *finance.Store
	images      blob.Store
	metrics     *metrics.Metrics
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("startup seed inserted %d rows", stats.Inserts)
	}

	catalog := units.NewCatalog()

	var images blob.Store
	if cfg.BlobBucket != "" {
		s3Store, err := blob.NewS3(context.Background(), blob.S3Config{
			Bucket:    cfg.BlobBucket,
			Region:    cfg.BlobRegion,
			Endpoint:  cfg.BlobEndpoint,
			PathStyle: cfg.BlobPathStyle,
		})
		if err != nil {
			log.Fatalf("failed to init image storage: %v", err)
		}
		images = s3Store
	}

	srv := &server{
		auth:        newAuthService(database, cfg.JWTSecret),
		db:          database,
		catalog:     catalog,
		ingredients: ingredients.NewStore(database, catalog),
		recipes:     recipes.NewStore(database, catalog),
		finance:     finance.NewStore(database),
		images:      images,
		metrics:     metrics.New(),
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.middleware)

		r.Get("/api/units", s.handleListUnits)

		r.Get("/api/ingredients", s.handleListIngredients)
		r.Post("/api/ingredients", s.handleCreateIngredient)
		r.Put("/api/ingredients/{id}", s.handleUpdateIngredient)
		r.Delete("/api/ingredients/{id}", s.handleDeleteIngredient)

		r.Get("/api/recipes", s.handleListRecipes)
		r.Get("/api/recipes/{id}", s.handleGetRecipe)
		r.Post("/api/recipes", s.handleCreateRecipe)
		r.Put("/api/recipes/{id}", s.handleUpdateRecipe)
		r.Delete("/api/recipes/{id}", s.handleDeleteRecipe)
		r.Post("/api/recipes/{id}/image", s.handleUploadRecipeImage)

		r.Get("/api/financials", s.handleListFinancials)
		r.Post("/api/financials", s.handleUpsertFinancials)

		r.Get("/api/dashboard", s.handleDashboard)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("CostManager API is running"))
}

func (s *server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	type unitView struct {
		Tag          string  `json:"tag"`
		Dimension    string  `json:"dimension"`
		FactorToBase float64 `json:"factor_to_base"`
	}

	tags := s.catalog.Tags()
	sort.Strings(tags)
	list := make([]unitView, 0, len(tags))
	for _, tag := range tags {
		u, _ := s.catalog.Lookup(tag)
		list = append(list, unitView{Tag: u.Tag, Dimension: string(u.Dimension), FactorToBase: u.FactorToBase})
	}

	writeJSON(w, http.StatusOK, list)
}
