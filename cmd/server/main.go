package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artsearch/server/internal/config"
	"github.com/artsearch/server/internal/handlers"
	custommw "github.com/artsearch/server/internal/middleware"
	"github.com/artsearch/server/internal/models"
	"github.com/artsearch/server/internal/observability"
	"github.com/artsearch/server/internal/repository"
	"github.com/artsearch/server/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

const serviceVersion = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize telemetry
	telemetryCfg := observability.NewConfig("artsearch-server", serviceVersion)
	telemetry, err := observability.Initialize(context.Background(), telemetryCfg)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}()

	// Initialize database
	var db *sql.DB
	dbSystem := "sqlite"
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL database")
		dbSystem = "postgresql"
		db, err = repository.NewPostgresDB(cfg.DatabaseURL)
	} else {
		log.Println("Using SQLite database")
		db, err = repository.NewSQLiteDB(cfg.DatabasePath)
	}
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Repositories read through the traced connection; services still
	// get the raw handle for transactions.
	tracedDB := observability.NewTraceDB(db, dbSystem)
	searchRepo := repository.NewSearchRepository(tracedDB)
	pageRepo := repository.NewSearchPageRepository(tracedDB)
	artworkRepo := repository.NewArtworkRepository(tracedDB)
	collectionRepo := repository.NewCollectionRepository(tracedDB)
	workRepo := repository.NewCollectedWorkRepository(tracedDB)
	userRepo := repository.NewUserRepository(tracedDB)

	// Seed the first user if a bootstrap key was provided
	if cfg.Security.BootstrapAPIKey != "" {
		if err := bootstrapUser(context.Background(), userRepo, cfg.Security.BootstrapEmail, cfg.Security.BootstrapAPIKey); err != nil {
			log.Fatalf("Failed to bootstrap user: %v", err)
		}
	}

	// Business metrics
	searchMetrics, err := observability.NewSearchMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize HTTP metrics: %v", err)
	}

	// Initialize services
	articClient := services.NewArticClient(cfg.ArtAPI.SearchBaseURL, cfg.ArtAPI.DetailBaseURL, cfg.ArtAPI.Timeout())
	searchService := services.NewSearchService(db, searchRepo, pageRepo, artworkRepo, articClient)
	searchService.SetMetrics(searchMetrics)
	artworkService := services.NewArtworkService(artworkRepo, articClient)
	artworkService.SetMetrics(searchMetrics)
	collectionService := services.NewCollectionService(db, collectionRepo, workRepo, artworkRepo)
	collectionService.SetMetrics(searchMetrics)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService)
	artworkHandler := handlers.NewArtworkHandler(artworkService)
	collectionHandler := handlers.NewCollectionHandler(collectionService)
	healthHandler := handlers.NewHealthHandler()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware("artsearch-server"))
	r.Use(observability.MetricsMiddleware(httpMetrics))
	r.Use(custommw.UserAPIKeyAuth(userRepo, cfg.Security.APIKeyHeader, []string{"/health", "/api/health"}))

	// Routes
	r.Get("/health", healthHandler.Health)
	r.Get("/api/health", healthHandler.Health)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/search", func(r chi.Router) {
		r.Post("/", searchHandler.Search)
		r.Delete("/", searchHandler.Clear)
		r.Post("/navigate", searchHandler.Navigate)
		r.Get("/pages/{page}", searchHandler.GetPage)
	})

	r.Get("/api/artworks/{externalID}", artworkHandler.Get)

	r.Route("/api/collections", func(r chi.Router) {
		r.Get("/", collectionHandler.ListCollections)
		r.Post("/", collectionHandler.CreateCollection)
		r.Post("/artworks", collectionHandler.AddArtwork)
		r.Get("/{id}/artworks", collectionHandler.GetArtworks)
		r.Delete("/{id}/artworks/{artworkID}", collectionHandler.RemoveArtwork)
		r.Delete("/{id}", collectionHandler.DeleteCollection)
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("ArtSearch Server starting on %s", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// bootstrapUser creates the seed user for the configured API key if no
// user with that key exists yet
func bootstrapUser(ctx context.Context, userRepo repository.UserRepo, email, apiKey string) error {
	hash := models.HashAPIKey(apiKey)
	existing, err := userRepo.GetByAPIKeyHash(ctx, hash)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	user, err := models.NewUser(email, "Bootstrap User")
	if err != nil {
		return err
	}
	user.APIKeyHash = hash
	if err := userRepo.Add(ctx, user); err != nil {
		return err
	}

	log.Printf("Bootstrapped user %s", email)
	return nil
}
