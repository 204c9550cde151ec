// Package api exposes the URL analyzer over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"urlguard/store"
	"urlguard/urlcheck"
)

// Analyzer is the scoring engine behind the handler.
type Analyzer interface {
	Analyze(ctx context.Context, req urlcheck.AnalysisRequest) (urlcheck.AnalysisResult, error)
}

// HistoryStore persists checks. A nil store disables the cached flag and history.
type HistoryStore interface {
	Recent(ctx context.Context, urlHash string, since time.Time) (*store.URLCheck, error)
	Record(ctx context.Context, rec *store.URLCheck) error
}

type Config struct {
	Analyzer    Analyzer
	History     HistoryStore
	Logger      *zap.Logger
	RateLimit   int           // analyses per minute per caller (0 = disabled)
	CacheWindow time.Duration // how far back a history row counts as cached
	Now         func() time.Time
}

type Server struct {
	cfg      Config
	router   chi.Router
	limiters *rateLimiterMap
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CacheWindow <= 0 {
		cfg.CacheWindow = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		cfg:      cfg,
		limiters: newRateLimiterMap(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(s.withLogging)
	r.Use(withCORS)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/url-check", s.handleURLCheck)
	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background cleanup.
func (s *Server) Close() {
	s.limiters.stop()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
