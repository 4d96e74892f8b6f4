package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreatAtlas/atlas-backend/internal/actors"
	"github.com/ThreatAtlas/atlas-backend/internal/config"
	"github.com/ThreatAtlas/atlas-backend/internal/db"
	"github.com/ThreatAtlas/atlas-backend/internal/geocoding"
	"github.com/ThreatAtlas/atlas-backend/internal/geography"
	"github.com/ThreatAtlas/atlas-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db.Connect(cfg.DatabaseURL)
	actors.Init()
	store := actors.NewStore(db.DB)

	aliases, continents, err := geography.LoadTables(cfg.AliasTablePath, cfg.ContinentTablePath)
	if err != nil {
		log.Fatal("Failed to load geography tables: ", err)
	}

	metrics, err := geography.NewMetrics(nil)
	if err != nil {
		log.Fatal("Failed to register metrics: ", err)
	}

	engine := &geography.Engine{
		Source:     store,
		Tracker:    store,
		Aliases:    aliases,
		Continents: continents,
		Metrics:    metrics,
	}

	geocoder, err := geocoding.NewClient(cfg.Geocoder)
	if err != nil {
		log.Fatal("Failed to build geocoder: ", err)
	}
	switch {
	case geocoder != nil && cfg.GeocoderCacheTTL > 0:
		geocoding.Init()
		engine.Geocoder = geocoding.NewCachedClient(geocoder, db.DB, cfg.GeocoderCacheTTL)
	case geocoder != nil:
		engine.Geocoder = geocoder
	default:
		log.Println("[geocoding] disabled, map clicks resolve to continents only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := geography.NewRegistry(engine, cfg.SessionIdleTTL)
	go registry.Run(ctx, time.Minute)

	limiter := middleware.NewWriteLimiter(cfg.RateLimitWritesPerMinute)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(limiter.Middleware)
	r.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))
	r.Get("/", RootHandler)
	r.Handle("/metrics", promhttp.Handler())

	geoHandler := &geography.Handler{
		Registry:      registry,
		Engine:        engine,
		LookupTimeout: cfg.Geocoder.Timeout,
	}
	r.Mount("/actors", actors.SetupRoutes(store))
	r.Mount("/geography", geography.SetupRoutes(geoHandler))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Server listening on port :%s...", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	geoHandler.Wait()
}
