// Package server exposes product sheet sessions over HTTP: generation,
// live preview, editing and PDF download.
package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	productsheet "github.com/alnah/go-productsheet"
	"github.com/alnah/go-productsheet/internal/store"
)

// Defaults for the HTTP API.
const (
	DefaultRequestTimeout = 2 * time.Minute
	DefaultMaxSessions    = 256
	maxBodyBytes          = 1 << 20
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// errTooManySessions is returned when the session table is full.
var errTooManySessions = errors.New("too many open sessions")

// Server holds the open sessions, each backed by its own memory store.
type Server struct {
	svc            *productsheet.Service
	log            *zap.Logger
	requestTimeout time.Duration
	maxSessions    int
	newStore       func() store.Store

	mu       sync.Mutex
	sessions map[string]*productsheet.Session
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRequestTimeout bounds each request, generation and export included.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithMaxSessions caps the number of concurrently open sessions.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// New creates a Server over svc.
func New(svc *productsheet.Service, opts ...Option) *Server {
	s := &Server{
		svc:            svc,
		log:            zap.NewNop(),
		requestTimeout: DefaultRequestTimeout,
		maxSessions:    DefaultMaxSessions,
		newStore:       func() store.Store { return store.NewMemory() },
		sessions:       make(map[string]*productsheet.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/badges", s.handleBadges)
	r.Get("/style-knobs", s.handleKnobs)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/preview", s.handlePreview)
			r.Put("/content", s.handleContent)
			r.Put("/badges", s.handleBadgeSelection)
			r.Patch("/badges/{name}", s.handleBadgePatch)
			r.Get("/badges/{name}/palette", s.handlePalette)
			r.Put("/styles", s.handleStyles)
			r.Delete("/styles", s.handleResetStyles)
			r.Post("/export", s.handleExport)
		})
	})
	return r
}

// logRequests logs one line per request with its id, status and latency.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Info("request",
				zap.String("id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)))
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) add(sess *productsheet.Session) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.maxSessions {
		return "", errTooManySessions
	}
	id := uuid.NewString()
	s.sessions[id] = sess
	return id, nil
}

func (s *Server) lookup(id string) (*productsheet.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Server) remove(id string) (*productsheet.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	return sess, ok
}

// Len returns the number of open sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
