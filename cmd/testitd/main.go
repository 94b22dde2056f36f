package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/testit-edu/testit-server/internal/api/http"
	"github.com/testit-edu/testit-server/internal/audit"
	"github.com/testit-edu/testit-server/internal/auth"
	authmw "github.com/testit-edu/testit-server/internal/auth/middleware"
	"github.com/testit-edu/testit-server/internal/config"
	"github.com/testit-edu/testit-server/internal/db"
	"github.com/testit-edu/testit-server/internal/rbac"
	"github.com/testit-edu/testit-server/internal/testpool"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := testpool.NewSQLStore(dbh, cfg.DBDriver)
	engine := testpool.New(store, testpool.Options{
		NumPublicTestsForAccess: cfg.NumPublicTestsForAccess,
		MaxTestsPerStudent:      cfg.MaxTestsPerStudent,
		MaxNumReturnedTests:     cfg.MaxNumReturnedTests,
		WeightReturnedTests:     cfg.WeightReturnedTests,
	}, cfg.DefaultAuthor)
	events := audit.NewEventRepo(dbh)

	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Autograder surface: static grader token or an admin JWT.
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.GraderOrJWT(authSvc, cfg.GraderToken))
		pr.With(rbac.Require("tests:submit")).
			Post("/submit-tests/{assignment}", api.SubmitTestsHandler(engine, events, cfg))
		pr.With(rbac.Require("results:submit")).
			Post("/submit-results/{assignment}", api.SubmitResultsHandler(engine, events, cfg))
	})

	// Student/admin surface (JWT -> subject+role -> permission checks).
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc, cfg.AllowAnonymous))

		pr.With(rbac.Require("tests:view")).
			Get("/get-tests/{assignment}", api.GetTestsHandler(engine))
		pr.With(rbac.Require("tests:view")).
			Get("/get-collections", api.GetCollectionsHandler(engine))

		pr.With(rbac.Require("tests:react")).
			Post("/like-test/{assignment}/{testID}", api.LikeTestHandler(engine))
		pr.With(rbac.Require("tests:react")).
			Post("/dislike-test/{assignment}/{testID}", api.DislikeTestHandler(engine))

		pr.With(rbac.RequireAny("tests:delete-own", "tests:delete-any")).
			Delete("/delete-test/{assignment}/{testID}", api.DeleteTestHandler(engine, events))
		pr.With(rbac.Require("tests:delete-any")).
			Delete("/delete-test/{assignment}", api.AdminDeleteTestHandler(engine, events))

		pr.With(rbac.Require("tests:view-raw")).
			Get("/view-tests/{assignment}", api.ViewTestsHandler(engine))
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
