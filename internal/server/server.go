// Package server exposes sessions over a JSON HTTP API.
//
// Endpoints:
//
//	GET    /api/health
//	POST   /api/sessions                               create a session
//	GET    /api/sessions/{id}                          snapshot
//	DELETE /api/sessions/{id}                          teardown
//	POST   /api/sessions/{id}/advance                  {"scene":"photo"}
//	POST   /api/sessions/{id}/next                     narrative successor
//	POST   /api/sessions/{id}/back
//	POST   /api/sessions/{id}/keys                     {"key":"b"}
//	GET    /api/sessions/{id}/scenes/{scene}/result    latest carousel
//	GET    /api/sessions/{id}/scenes/{scene}/images/{n} raw image bytes
//	POST   /api/sessions/{id}/photo/generate           multipart: photo
//	POST   /api/sessions/{id}/photo/select             {"index":0}
//	POST   /api/sessions/{id}/cake/generate            multipart: partner, friend
//	POST   /api/sessions/{id}/dressup/generate         multipart: outfit
//	POST   /api/sessions/{id}/dressup/accept
//	POST   /api/sessions/{id}/food/generate            {"name":"pizza"}
//	GET    /api/sessions/{id}/food/character
//	POST   /api/sessions/{id}/secret/generate          multipart: partner, honoree
//
// Generation requests outlive the HTTP request that started them: closing
// the browser tab does not abort a running generation, shutting the server
// down does.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/fpang/birthday-surprise/internal/session"
)

// Server routes API requests to a session store.
type Server struct {
	store  *session.Store
	base   context.Context
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithBaseContext sets the context generations run under. Cancelling it
// aborts in-flight generations.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) { s.base = ctx }
}

// New builds the router for store.
func New(store *session.Store, opts ...Option) *Server {
	s := &Server{store: store, base: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the compressed, instrumented API handler.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withSecurityHeaders)
	r.Use(withLogging)
	r.Use(withMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/api/health", s.handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.withSession)

			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDelete)
			r.Post("/advance", s.handleAdvance)
			r.Post("/next", s.handleNext)
			r.Post("/back", s.handleBack)
			r.Post("/keys", s.handleKey)

			r.Get("/scenes/{scene}/result", s.handleResult)
			r.Get("/scenes/{scene}/images/{n}", s.handleImage)

			r.Post("/photo/generate", s.handlePhotoGenerate)
			r.Post("/photo/select", s.handlePhotoSelect)
			r.Post("/cake/generate", s.handleCakeGenerate)
			r.Post("/dressup/generate", s.handleDressUpGenerate)
			r.Post("/dressup/accept", s.handleDressUpAccept)
			r.Post("/food/generate", s.handleFoodGenerate)
			r.Get("/food/character", s.handleCharacter)
			r.Post("/secret/generate", s.handleSecretGenerate)
		})
	})
	return r
}

// generationContext detaches a generation from the request that started it
// while keeping it bound to the server's lifetime.
func (s *Server) generationContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	stop := context.AfterFunc(s.base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

type sessionKey struct{}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}
