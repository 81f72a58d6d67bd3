package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/medintake/platform/internal/adapters/insurer"
	"github.com/medintake/platform/internal/adapters/insurer/pvs"
	"github.com/medintake/platform/internal/document"
	"github.com/medintake/platform/internal/intake"
	"github.com/medintake/platform/internal/shared/auth"
	"github.com/medintake/platform/internal/shared/config"
	"github.com/medintake/platform/internal/shared/database"
	"github.com/medintake/platform/internal/shared/events"
	"github.com/medintake/platform/internal/shared/metrics"
	secmiddleware "github.com/medintake/platform/internal/shared/middleware"
)

// App holds all application dependencies
type App struct {
	Config  *config.Config
	DB      *database.DB
	Bus     *events.Bus
	Insurer insurer.Client
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database not available: %v\n", err)
		os.Exit(1)
	}
	app.DB = db
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	// Initialize event bus (optional - skip if not available)
	if cfg.EventStore.Enabled {
		bus, err := events.NewBus(ctx, cfg.EventStore)
		if err != nil {
			fmt.Printf("Warning: EventStoreDB not available: %v\n", err)
			fmt.Println("Running without event streaming...")
		} else {
			app.Bus = bus
			defer bus.Close()
			fmt.Println("EventStoreDB event bus initialized")
		}
	}

	// Connect the practice-management system (optional)
	if cfg.PVS.Enabled {
		adapter, err := pvs.New(ctx, cfg.PVS)
		if err != nil {
			fmt.Printf("Warning: PVS not available: %v\n", err)
			fmt.Println("Running without insured-party lookups...")
		} else {
			app.Insurer = adapter
			defer adapter.Close()
			fmt.Println("PVS adapter connected")
		}
	}

	// Document pipeline
	renderer := document.NewRenderer()
	if err := renderer.ParseAll(); err != nil {
		fmt.Fprintf(os.Stderr, "template check failed: %v\n", err)
		os.Exit(1)
	}
	converter := document.NewChromeConverter(cfg.Documents.ChromePath, cfg.Documents.ConvertTimeout)
	assembler := document.NewAssembler(renderer, converter)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.BodyLimit(4 << 20))
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	rateLimiter := secmiddleware.NewIPRateLimiter(20, 40)
	r.Use(rateLimiter.Middleware)

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	// API info
	r.Get("/", infoHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Server.Env == "production" {
			r.Use(auth.Middleware(cfg.Auth))
		}

		// Intake module
		intakeRepo := intake.NewRepository(app.DB.Pool)
		intakeHandler := intake.NewHandler(intakeRepo, busOrNil(app), app.Insurer)
		r.Mount("/intake", intakeHandler.Routes())

		// Document module, addressed per intake record
		documentRepo := document.NewRepository(app.DB.Pool)
		documentHandler := document.NewHandler(intakeRepo, documentRepo, assembler, busOrNil(app))
		r.Mount("/intake/{recordID}/document", documentHandler.Routes())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("Patient Intake Platform")
	fmt.Println("============================================")
	fmt.Printf("Environment:  %s\n", cfg.Server.Env)
	fmt.Printf("Server:       http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:          http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:       http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("EventStore:   %s:%d (enabled=%v)\n", cfg.EventStore.Host, cfg.EventStore.Port, cfg.EventStore.Enabled)
	fmt.Printf("PVS:          enabled=%v\n", cfg.PVS.Enabled)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

// busOrNil avoids handing handlers a typed nil pointer behind the EventBus
// interface when the bus is not configured.
func busOrNil(app *App) events.EventBus {
	if app.Bus == nil {
		return nil
	}
	return app.Bus
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "Patient Intake Platform",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["eventstore"] = "not ready: " + err.Error()
			} else {
				checks["eventstore"] = "ready"
			}
		} else {
			checks["eventstore"] = "not configured"
		}

		if app.Insurer != nil {
			if err := app.Insurer.Health(r.Context()); err != nil {
				checks["pvs"] = "not ready: " + err.Error()
			} else {
				checks["pvs"] = "ready"
			}
		} else {
			checks["pvs"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Accept-Language, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
