package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/raffaelramalhorosa/techfeed/internal/models"
	"github.com/raffaelramalhorosa/techfeed/internal/render"
	"github.com/raffaelramalhorosa/techfeed/internal/store"
)

// Refresher runs a load on demand.
type Refresher interface {
	Refresh(ctx context.Context) models.Snapshot
}

// Server holds dependencies for the HTTP handlers.
type Server struct {
	store     *store.Store
	refresher Refresher
	limiter   *rate.Limiter
	adapter   *render.Adapter
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New wires up routes and returns a ready-to-use Server. A nil limiter
// leaves refresh unlimited.
func New(s *store.Store, refresher Refresher, limiter *rate.Limiter, logger *slog.Logger) *Server {
	srv := &Server{
		store:     s,
		refresher: refresher,
		limiter:   limiter,
		adapter:   render.NewAdapter(nil, render.NopThumbnails{}, logger),
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	srv.routes()
	return srv
}

// ServeHTTP makes Server satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ---------- Routes ----------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/articles", s.handleListArticles)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// ---------- Handlers ----------

type articlesResponse struct {
	State     models.State `json:"state"`
	LoadID    string       `json:"load_id,omitempty"`
	FetchedAt *time.Time   `json:"fetched_at,omitempty"`
	Error     string       `json:"error,omitempty"`
	Articles  []render.Row `json:"articles"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	snap, articles := s.store.View(category, limit)
	writeJSON(w, http.StatusOK, s.response(snap, articles))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		retryAfter := max(int(math.Ceil(1/float64(s.limiter.Limit()))), 1)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "refresh rate limit exceeded"})
		return
	}

	snap := s.refresher.Refresh(r.Context())
	s.logger.Info("refresh requested", "load_id", snap.LoadID, "state", snap.State)
	writeJSON(w, http.StatusOK, s.response(snap, snap.Articles))
}

func (s *Server) response(snap models.Snapshot, articles []models.Article) articlesResponse {
	resp := articlesResponse{
		State:    snap.State,
		LoadID:   snap.LoadID,
		Articles: s.adapter.Rows(articles),
	}
	if !snap.FetchedAt.IsZero() {
		at := snap.FetchedAt.UTC()
		resp.FetchedAt = &at
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	return resp
}

// ---------- Helpers ----------

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
