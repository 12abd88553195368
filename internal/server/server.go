package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"

	"github.com/AlexTLDR/invitations/internal/auth"
	"github.com/AlexTLDR/invitations/internal/config"
	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/server/handlers"
)

type Server struct {
	config       *config.Config
	db           *database.DB
	log          zerolog.Logger
	tokens       *auth.Tokens
	sessionStore *sessions.CookieStore
	validate     *validator.Validate
	router       *mux.Router
}

// GetDB implements handlers.Server interface
func (s *Server) GetDB() *database.DB {
	return s.db
}

// GetConfig implements handlers.Server interface
func (s *Server) GetConfig() *config.Config {
	return s.config
}

// Sessions implements handlers.Server interface
func (s *Server) Sessions() sessions.Store {
	return s.sessionStore
}

// Validator implements handlers.Server interface
func (s *Server) Validator() *validator.Validate {
	return s.validate
}

func New(cfg *config.Config, db *database.DB, log zerolog.Logger) *Server {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.CookieSecure
	store.Options.SameSite = http.SameSiteLaxMode
	// MaxAge also bounds how long the signed value verifies
	store.MaxAge(int(handlers.CookieMaxAge / time.Second))

	s := &Server{
		config:       cfg,
		db:           db,
		log:          log,
		tokens:       auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL),
		sessionStore: store,
		validate:     handlers.NewValidator(),
		router:       mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(handlers.HandleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(handlers.HandleMethodNotAllowed)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.requireAdmin(s.handleMe)).Methods(http.MethodGet)

	// Invitation routes. mux matches in registration order, so export and
	// import win over the {slug} GET; utils.InvitationSlugBase never yields
	// those two words as a slug.
	for _, path := range []string{"/invitations", "/invitations/"} {
		api.HandleFunc(path, s.requireAdmin(handlers.HandleListInvitations(s))).Methods(http.MethodGet)
		api.HandleFunc(path, s.requireAdmin(handlers.HandleCreateInvitation(s))).Methods(http.MethodPost)
	}
	api.HandleFunc("/invitations/export", s.requireAdmin(handlers.HandleExportInvitations(s))).Methods(http.MethodGet)
	api.HandleFunc("/invitations/import", s.requireAdmin(handlers.HandleImportInvitations(s))).Methods(http.MethodPost)
	api.HandleFunc("/invitations/{slug}", handlers.HandleGetInvitation(s)).Methods(http.MethodGet)
	api.HandleFunc("/invitations/{slug}/response", handlers.HandleSubmitResponse(s)).Methods(http.MethodPost)
	api.HandleFunc("/invitations/{invitation_id}", s.requireAdmin(handlers.HandleUpdateInvitation(s))).Methods(http.MethodPut)
	api.HandleFunc("/invitations/{invitation_id}", s.requireAdmin(handlers.HandleDeleteInvitation(s))).Methods(http.MethodDelete)

	// Template routes
	for _, path := range []string{"/templates", "/templates/"} {
		api.HandleFunc(path, s.requireAdmin(handlers.HandleListTemplates(s))).Methods(http.MethodGet)
		api.HandleFunc(path, s.requireAdmin(handlers.HandleCreateTemplate(s))).Methods(http.MethodPost)
	}
	api.HandleFunc("/templates/{template_id}", s.requireAdmin(handlers.HandleGetTemplate(s))).Methods(http.MethodGet)
	api.HandleFunc("/templates/{template_id}", s.requireAdmin(handlers.HandleUpdateTemplate(s))).Methods(http.MethodPut)
	api.HandleFunc("/templates/{template_id}", s.requireAdmin(handlers.HandleDeleteTemplate(s))).Methods(http.MethodDelete)
}

// Handler returns the router wrapped in logging, recovery and CORS middleware
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router

	h = gorillahandlers.CORS(
		s.allowedOrigins(),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gorillahandlers.AllowCredentials(),
	)(h)

	h = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(recoveryLogger{log: s.log}),
		gorillahandlers.PrintRecoveryStack(true),
	)(h)

	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.RemoteAddrHandler("ip")(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	h = hlog.NewHandler(s.log)(h)

	return h
}

// allowedOrigins echoes the request origin for "*"; credentialed responses
// may not carry a literal wildcard.
func (s *Server) allowedOrigins() gorillahandlers.CORSOption {
	if slices.Contains(s.config.AllowedOrigins, "*") {
		return gorillahandlers.AllowedOriginValidator(func(string) bool { return true })
	}
	return gorillahandlers.AllowedOrigins(s.config.AllowedOrigins)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		handlers.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recoveryLogger routes panics caught by gorilla/handlers to zerolog.
type recoveryLogger struct {
	log zerolog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error().Msg(fmt.Sprint(v...))
}
