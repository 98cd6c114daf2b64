// Package web exposes the account operations over HTTP. Every route that
// needs one is wrapped in an access chain that runs before the handler.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/access"
	"github.com/dmitrijs2005/gatekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/gorilla/mux"
)

const (
	loginPath         = "/login"
	sessionCookieName = "session"
	shutdownTimeout   = 10 * time.Second
)

type Server struct {
	address         string
	accounts        *services.AccountService
	metrics         *metrics.Metrics
	logger          logging.Logger
	sessionValidity time.Duration
	secureCookies   bool
	router          *mux.Router
}

func NewServer(
	address string,
	l logging.Logger,
	accounts *services.AccountService,
	met *metrics.Metrics,
	sessionValidity time.Duration,
	baseURL string,
) *Server {
	s := &Server{
		address:         address,
		accounts:        accounts,
		metrics:         met,
		logger:          l.With("module", "http_server"),
		sessionValidity: sessionValidity,
		secureCookies:   strings.HasPrefix(baseURL, "https://"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(s.metrics.Middleware, s.identityMiddleware)

	authenticated := access.RequireAuthenticated(loginPath)
	admin := access.RequireRole(models.RoleAdmin)
	selfOrAdmin := access.RequireSelfOrRole(models.RoleAdmin)

	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodGet)

	r.HandleFunc("/reset", s.requestReset).Methods(http.MethodPost)
	r.HandleFunc("/reset/{uid}/{expires}/{mac}", s.checkReset).Methods(http.MethodGet)
	r.HandleFunc("/reset/{uid}/{expires}/{mac}", s.completeReset).Methods(http.MethodPost)

	r.HandleFunc("/signup", s.requestSignup).Methods(http.MethodPost)
	r.HandleFunc("/complete_signup/{email}/{expires}/{mac}", s.checkSignup).Methods(http.MethodGet)
	r.HandleFunc("/complete_signup/{email}/{expires}/{mac}", s.completeSignup).Methods(http.MethodPost)

	r.HandleFunc("/manage", s.guard(access.Chain{authenticated}, s.showAccount)).Methods(http.MethodGet)
	r.HandleFunc("/manage", s.guard(access.Chain{authenticated}, s.updateAccount)).Methods(http.MethodPost)

	r.HandleFunc("/users", s.guard(access.Chain{authenticated, admin}, s.listUsers)).Methods(http.MethodGet)
	r.HandleFunc("/user/{uid}", s.guard(access.Chain{authenticated, selfOrAdmin}, s.getUser)).Methods(http.MethodGet)
	r.HandleFunc("/reset_user/{uid}", s.guard(access.Chain{authenticated, admin, selfOrAdmin}, s.resetUser)).Methods(http.MethodGet)
	r.HandleFunc("/role/{uid}", s.guard(access.Chain{authenticated, admin}, s.showRole)).Methods(http.MethodGet)
	r.HandleFunc("/role/{uid}", s.guard(access.Chain{authenticated, admin}, s.changeRole)).Methods(http.MethodPost)
	r.HandleFunc("/deactivate/{uid}", s.guard(access.Chain{authenticated, selfOrAdmin}, s.deactivate)).Methods(http.MethodPost)

	r.HandleFunc("/roles", s.listRoles).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
