// Package httpapi is the HTTP ingress: the upload endpoint that starts a
// verification, behind the auth guard chain, plus the metrics endpoint.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"faceverify/internal/core/ports"
)

// Server wires the chi router over the ports the ingress needs.
type Server struct {
	users         ports.UserRepository
	denylist      ports.TokenDenylistRepository
	verifications ports.VerificationRepository
	images        ports.ImageStore
	queue         ports.QueueClient
	jwtSecret     []byte
	log           zerolog.Logger
}

// NewServer creates the ingress server.
func NewServer(
	users ports.UserRepository,
	denylist ports.TokenDenylistRepository,
	verifications ports.VerificationRepository,
	images ports.ImageStore,
	queue ports.QueueClient,
	jwtSecret string,
	baseLogger *zerolog.Logger,
) *Server {
	return &Server{
		users:         users,
		denylist:      denylist,
		verifications: verifications,
		images:        images,
		queue:         queue,
		jwtSecret:     []byte(jwtSecret),
		log:           baseLogger.With().Str("component", "http_api").Logger(),
	}
}

// Handler builds the route tree. The guard chain runs outside-in:
// token -> denylist -> user state -> verification state.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authGuard)
		r.Use(s.denylistGuard)
		r.Use(s.userGuard)
		r.Use(s.verificationGuard)
		r.Post("/user", s.handleStartVerification)
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("Failed to write response body")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}
