package main

import (
	"context"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/expense-guardian/internal/analyzer"
	"github.com/dvloznov/expense-guardian/internal/api/handlers"
	"github.com/dvloznov/expense-guardian/internal/api/middleware"
	"github.com/dvloznov/expense-guardian/internal/config"
	"github.com/dvloznov/expense-guardian/internal/logger"
	"github.com/dvloznov/expense-guardian/internal/report"
	"github.com/dvloznov/expense-guardian/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	// Parse command-line flags (flags win over environment)
	var (
		port = flag.String("port", cfg.Port, "HTTP server port")
	)
	flag.Parse()
	cfg.Port = *port

	// Initialize logger
	log := logger.New()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Resolve the Gemini credential. Absence is not fatal: the analyzer
	// degrades every request to a flagged record instead.
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		log.Warn().Msg("No Gemini API key resolvable - receipt analysis will return degraded records")
	}

	gemini := analyzer.New(ctx, apiKey, log)
	log.Info().Str("model", gemini.Model()).Bool("online", gemini.Online()).Msg("Receipt analyzer ready")

	// Session store and financial coach
	sessions := session.NewStore()
	coach := report.NewCoach(cfg.CoachDelay, rand.New(rand.NewSource(time.Now().UnixNano())))

	// Initialize handlers
	receiptsHandler := handlers.NewReceiptsHandler(gemini, sessions, cfg.MaxUploadBytes, log)
	reportsHandler := handlers.NewReportsHandler(sessions, coach, log)

	// Create router
	mux := http.NewServeMux()

	// Receipts endpoints
	mux.HandleFunc("/api/receipts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			receiptsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.Analyze(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			receiptsHandler.Latest(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Dashboard endpoints
	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			reportsHandler.Summary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/coach", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			reportsHandler.Coach(w, r)
		case http.MethodGet:
			reportsHandler.LastAdvice(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"model":     gemini.Model(),
			"ai_online": gemini.Online(),
			"time":      time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
