// Package api provides the HTTP REST API server for ResearchIQ.
//
// It exposes endpoints for running a full research analysis, listing the
// supported assets, fetching the standing disclaimer, and health checks.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/researchiq/researchiq/internal/config"
	"github.com/researchiq/researchiq/internal/infra"
	"github.com/researchiq/researchiq/internal/report"
	"github.com/researchiq/researchiq/internal/research"
	"github.com/researchiq/researchiq/pkg/models"
	"github.com/researchiq/researchiq/pkg/utils"
)

// analyzeTimeout bounds one full analysis run, LLM retries included.
const analyzeTimeout = 2 * time.Minute

// Analyzer runs the research pipeline for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker, assetType string) (*models.Report, error)
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	orch   Analyzer
	cache  *infra.Cache
}

// NewServer creates a configured API server with all routes and middleware.
// cache may be nil; it is only used by the cache-invalidation endpoint.
func NewServer(cfg *config.Config, orch Analyzer, cache *infra.Cache) *Server {
	srv := &Server{
		cfg:   cfg,
		orch:  orch,
		cache: cache,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: analyzeTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(analyzeTimeout + 30*time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Analysis
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyze/{ticker}", s.handleAnalyzeGet)

		// Supported assets
		r.Get("/assets", s.handleAssets)

		// Standing disclaimer
		r.Get("/disclaimer", s.handleDisclaimer)

		// Cache maintenance
		r.Delete("/cache/{ticker}", s.handleInvalidateCache)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Ticker    string `json:"ticker"`
	AssetType string `json:"asset_type,omitempty"` // "stocks", "crypto", "indices", "commodities"
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"app":     report.AppName,
			"version": report.AppVersion,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	s.runAnalysis(w, r, req.Ticker, req.AssetType)
}

func (s *Server) handleAnalyzeGet(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	s.runAnalysis(w, r, ticker, r.URL.Query().Get("asset_type"))
}

func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, ticker, assetType string) {
	ctx, cancel := context.WithTimeout(r.Context(), analyzeTimeout)
	defer cancel()

	rep, err := s.orch.Analyze(ctx, ticker, assetType)
	if err != nil {
		switch {
		case errors.Is(err, research.ErrInvalidTicker):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, research.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("api: analysis failed for %s: %v", ticker, err)
			writeError(w, http.StatusBadGateway, "analysis failed: upstream data unavailable")
		}
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	types := make([]string, 0, len(config.AssetTypes))
	for name := range config.AssetTypes {
		types = append(types, name)
	}
	sort.Strings(types)

	assets := make(map[string][]string, len(types))
	for _, name := range types {
		assets[name] = config.AssetTypes[name]
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"asset_types": types,
			"assets":      assets,
		},
	})
}

func (s *Server) handleDisclaimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report.Disclaimer(),
	})
}

func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusNotImplemented, "cache not configured")
		return
	}
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if !utils.ValidTickerFormat(ticker) {
		writeError(w, http.StatusBadRequest, "invalid ticker format")
		return
	}
	removed := s.cache.InvalidatePrefix(ticker + ":")
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"ticker":  ticker,
			"removed": removed,
		},
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
