// Package api exposes a remote.Store over HTTP so that terminal clients can
// share one profile database without holding its credentials.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/vovakirdan/retroplay/internal/remote"
)

// Server is the HTTP front of a remote.Store.
type Server struct {
	server *http.Server
	logger *log.Logger
}

// Options configures a Server.
type Options struct {
	Addr  string
	Store remote.Store
	// Token, when non-empty, must be presented as a bearer token on every
	// /v1 request.
	Token  string
	Logger *log.Logger
}

// NewServer creates a Server. It does not start listening.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(opts.Store, opts.Token, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter builds the route table. It is exported for tests and for
// embedding the API in another server.
func NewRouter(store remote.Store, token string, logger *log.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, accessLog(logger))
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(bearerAuth(token))
	v1.HandleFunc("/users/{stableID}", handleUpsertUser(store, logger)).Methods(http.MethodPut)
	v1.HandleFunc("/profiles/{userID:[0-9]+}", handleEnsureProfile(store, logger)).Methods(http.MethodPut)
	v1.HandleFunc("/profiles/{userID:[0-9]+}", handleGetProfile(store, logger)).Methods(http.MethodGet)
	v1.HandleFunc("/profiles/{userID:[0-9]+}/increment", handleIncrement(store, logger)).Methods(http.MethodPost)
	v1.HandleFunc("/scores/{userID:[0-9]+}/{gameKey}", handleGetGameScore(store, logger)).Methods(http.MethodGet)
	v1.HandleFunc("/scores/{userID:[0-9]+}/{gameKey}", handleUpsertGameScore(store, logger)).Methods(http.MethodPut)
	v1.HandleFunc("/leaderboard/xp", handleTopProfiles(store, logger)).Methods(http.MethodGet)
	v1.HandleFunc("/leaderboard/games/{gameKey}", handleTopScores(store, logger)).Methods(http.MethodGet)
	return r
}

// Start listens and serves until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("API server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			s.logger.Info("API server closed")
			return nil
		}
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
