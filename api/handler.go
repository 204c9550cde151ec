package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"urlguard/store"
	"urlguard/urlcheck"
)

type checkRequest struct {
	URL    string `json:"url"`
	UserID string `json:"user_id,omitempty"`
}

type checkDetails struct {
	Checks           map[string]urlcheck.CheckOutcome `json:"checks"`
	Warnings         []string                         `json:"warnings"`
	Recommendations  []string                         `json:"recommendations"`
	DomainContext    urlcheck.DomainContext           `json:"domainContext"`
	ScoreExplanation string                           `json:"scoreExplanation"`
}

type checkResponse struct {
	URL     string          `json:"url"`
	Status  urlcheck.Status `json:"status"`
	Score   int             `json:"score"`
	Details checkDetails    `json:"details"`
	Cached  bool            `json:"cached"`
	Error   string          `json:"error,omitempty"`
}

func newCheckResponse(url string, res urlcheck.AnalysisResult) checkResponse {
	return checkResponse{
		URL:    url,
		Status: res.Status,
		Score:  res.Score,
		Details: checkDetails{
			Checks:           res.Checks,
			Warnings:         res.Warnings,
			Recommendations:  res.Recommendations,
			DomainContext:    res.DomainContext,
			ScoreExplanation: res.ScoreExplanation,
		},
	}
}

func (s *Server) handleURLCheck(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	if _, err := urlcheck.ParseURL(req.URL); err != nil {
		res, _ := s.cfg.Analyzer.Analyze(r.Context(), urlcheck.AnalysisRequest{URL: req.URL, RequesterID: req.UserID})
		resp := newCheckResponse(req.URL, res)
		resp.Error = "Invalid domain"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	clientIP := clientIP(r)
	caller := req.UserID
	if caller == "" {
		caller = clientIP
	}
	if s.cfg.RateLimit > 0 && !s.limiters.allow(caller, s.cfg.RateLimit) {
		log.Info("rate limited", zap.String("caller", caller))
		writeError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Rate limit exceeded. Maximum %d URL checks per minute.", s.cfg.RateLimit))
		return
	}

	hash := urlcheck.HashURL(req.URL)
	var recent *store.URLCheck
	if s.cfg.History != nil {
		rec, err := s.cfg.History.Recent(r.Context(), hash, s.cfg.Now().Add(-s.cfg.CacheWindow))
		if err != nil {
			log.Warn("history lookup failed", zap.Error(err))
		}
		recent = rec
	}

	res, err := s.cfg.Analyzer.Analyze(r.Context(), urlcheck.AnalysisRequest{URL: req.URL, RequesterID: req.UserID})
	if err != nil {
		resp := newCheckResponse(req.URL, res)
		resp.Error = "Invalid domain"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp := newCheckResponse(req.URL, res)
	if recent != nil {
		resp.Status = urlcheck.Status(recent.Status)
		resp.Cached = true
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if s.cfg.History != nil {
		rec := &store.URLCheck{
			URL:       strings.TrimSpace(req.URL),
			URLHash:   hash,
			Status:    string(res.Status),
			Score:     res.Score,
			UserID:    req.UserID,
			IPAddress: clientIP,
			CheckedAt: s.cfg.Now(),
		}
		if err := s.cfg.History.Record(r.Context(), rec); err != nil {
			log.Error("failed to store url check", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
