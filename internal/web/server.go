package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"golang.org/x/oauth2"

	"cadence/internal/auth"
	"cadence/internal/config"
	"cadence/internal/logger"
	"cadence/internal/schedule"
	"cadence/internal/service"
	"cadence/internal/sticker"
	"cadence/internal/store"
)

// CalendarPusher pushes stored plans to an external calendar
type CalendarPusher interface {
	Push(ctx context.Context, plans store.Plans) (schedule.PushResult, error)
}

// Deps are the services the handlers call into. Calendar may be nil when
// no external calendar is configured.
type Deps struct {
	Store    *store.Store
	OAuth    *oauth2.Config
	Tokens   *auth.TokenStore
	Mirror   *service.Mirror
	Coach    *service.Coach
	Chat     *service.Chat
	Profiles *service.Profiles
	Sticker  *sticker.Renderer
	Calendar CalendarPusher
}

type Server struct {
	engine  *gin.Engine
	handler http.Handler
	http    *http.Server
	log     *logger.Logger
}

func NewServer(cfg config.ServerConfig, deps Deps, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		deps:          deps,
		pages:         pages,
		log:           log.With("component", "web"),
		secureCookies: cfg.SecureCookies,
		now:           time.Now,
	}
	engine := NewRouter(h, log)

	key, err := csrfKey(cfg.CSRFKey)
	if err != nil {
		return nil, err
	}
	if cfg.CSRFKey == "" {
		log.Warn("server.csrf_key not set, using a random key; forms break across restarts")
	}

	handler := csrfProtect(key, cfg.SecureCookies, h)(engine)

	addr := cfg.Addr
	if addr == "" {
		addr = config.DefaultAddr
	}

	return &Server{
		engine:  engine,
		handler: handler,
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

// Handler returns the full handler chain, CSRF protection included
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	s.log.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// csrfProtect wraps next with gorilla/csrf. Requests that did not arrive
// over TLS are marked plaintext so the origin check expects http.
func csrfProtect(key []byte, secure bool, h *Handler) func(http.Handler) http.Handler {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(http.HandlerFunc(h.csrfFailure)),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// csrfKey decodes a 64 character hex key, or generates a random one when
// configured is empty
func csrfKey(configured string) ([]byte, error) {
	if configured == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		return key, nil
	}
	key, err := hex.DecodeString(configured)
	if err != nil || len(key) != 32 {
		return nil, errors.New("server.csrf_key must be 64 hex characters")
	}
	return key, nil
}
