// Package api exposes the intake dialogue over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/service"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// Intake is the slice of the service the HTTP layer drives.
type Intake interface {
	HandleTurn(ctx context.Context, cid, text, attachmentPath string) (service.Result, error)
	SuggestEntity(kind, query string) ([]string, error)
	ReloadRegistries() map[model.EntityKind]int
}

var _ Intake = (*service.Service)(nil)

type Config struct {
	UploadDir   string
	MaxUploadMB int64
	AdminToken  string
}

type Server struct {
	router     chi.Router
	intake     Intake
	uploadDir  string
	maxUpload  int64
	adminToken string
}

func NewServer(intake Intake, cfg Config) (*Server, error) {
	if intake == nil {
		return nil, fmt.Errorf("intake service required")
	}
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 16
	}
	s := &Server{
		router:     chi.NewRouter(),
		intake:     intake,
		uploadDir:  dir,
		maxUpload:  maxMB << 20,
		adminToken: cfg.AdminToken,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/chat", s.handleChat)
	s.router.Get("/meta/{kind}/suggest", s.handleSuggest)

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/registries/reload", s.handleReload)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logx.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("dur", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// requireAdmin checks the bearer token. An unset token disables admin routes.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			writeError(w, http.StatusNotFound, errors.New("not found"))
			return
		}
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	counts := s.intake.ReloadRegistries()
	out := make(map[string]int, len(counts))
	for k, n := range counts {
		out[string(k)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": out})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logx.Warn().Err(err).Int("status", status).Msg("request failed")
	}
	msg := err.Error()
	var ae *errx.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
