// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/jobsaddah/jobharvest/internal/discover"
	"github.com/jobsaddah/jobharvest/internal/monitoring"
	"github.com/jobsaddah/jobharvest/internal/pipeline"
	"github.com/jobsaddah/jobharvest/internal/storage"
	"github.com/jobsaddah/jobharvest/internal/utils"
)

var logger = utils.NewComponentLogger("server")

// Ingestor processes one page URL. pipeline.Ingestor satisfies it.
type Ingestor interface {
	Ingest(ctx context.Context, url string) (*pipeline.Result, error)
}

// Syncer runs a full category sync. discover.Scheduler satisfies it.
type Syncer interface {
	SyncAll(ctx context.Context) *discover.SyncStats
}

// Config holds the HTTP surface settings.
type Config struct {
	Address string
	// APIKey guards the mutating endpoints when set. Read endpoints stay
	// open.
	APIKey        string
	RateLimit     rate.Limit
	RateBurst     int
	IngestTimeout time.Duration
	SyncTimeout   time.Duration
}

// Server exposes the ingestion pipeline over HTTP.
type Server struct {
	cfg     Config
	ingest  Ingestor
	syncer  Syncer
	store   storage.Store
	metrics *monitoring.Metrics
	http    *http.Server
}

// New builds the server. The syncer may be nil when no categories are
// configured; the sync endpoint then reports 503.
func New(cfg Config, ingest Ingestor, syncer Syncer, store storage.Store, metrics *monitoring.Metrics) *Server {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}
	if cfg.IngestTimeout <= 0 {
		cfg.IngestTimeout = 2 * time.Minute
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = 15 * time.Minute
	}

	s := &Server{
		cfg:     cfg,
		ingest:  ingest,
		syncer:  syncer,
		store:   store,
		metrics: metrics,
	}
	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.SyncTimeout + 30*time.Second,
	}
	return s
}

// Routes assembles the router. Exported so tests can drive the handler
// without binding a port.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Handle("/ingest", s.authMiddleware(http.HandlerFunc(s.handleIngest))).Methods("POST")
	api.Handle("/categories/sync", s.authMiddleware(http.HandlerFunc(s.handleSync))).Methods("POST")
	api.HandleFunc("/postings/{path:.+}", s.handleGetPosting).Methods("GET")

	return s.rateLimitMiddleware(r)
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	logger.Infof("listening on %s", s.cfg.Address)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type ingestRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body must be {\"url\": \"...\"}"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.IngestTimeout)
	defer cancel()

	result, err := s.ingest.Ingest(ctx, req.URL)
	if err != nil {
		status := http.StatusBadGateway
		resp := errorResponse{Error: err.Error()}
		if se, ok := pipeline.AsStageError(err); ok {
			resp.Stage = string(se.Stage)
			if !se.Retryable {
				status = http.StatusUnprocessableEntity
			}
		}
		writeJSON(w, status, resp)
		return
	}

	status := http.StatusOK
	if result.Action == pipeline.ActionCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no categories configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SyncTimeout)
	defer cancel()

	stats := s.syncer.SyncAll(ctx)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	path := "/" + mux.Vars(r)["path"]

	posting, err := s.store.FindBySourcePath(r.Context(), path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if posting == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no posting at " + path})
		return
	}
	writeJSON(w, http.StatusOK, posting)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if strings.TrimPrefix(authHeader, "Bearer ") != s.cfg.APIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	limiter := rate.NewLimiter(s.cfg.RateLimit, s.cfg.RateBurst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("encode response: %v", err)
	}
}
