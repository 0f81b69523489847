package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	command "github.com/goliatone/go-command"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	entriescmd "github.com/goliatone/go-formbridge/internal/commands/entries"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/pagebuilder"
	"github.com/goliatone/go-formbridge/internal/permissions"
	"github.com/goliatone/go-formbridge/internal/providers"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/internal/siteurl"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
)

var (
	ErrRegistryRequired = errors.New("http: provider registry is required")
	ErrSettingsRequired = errors.New("http: settings service is required")
	ErrSecretRequired   = errors.New("http: auth secret is required")
)

// NonceIssuer signs nonces embedded in the admin pages.
type NonceIssuer interface {
	Issue(action, user string) (string, error)
}

// Config wires a Server. Catalog, Gatherer and the command handlers are
// optional; their routes are only mounted when set.
type Config struct {
	BasePath      string
	Registry      *providers.Registry
	Settings      *settings.Service
	Nonces        NonceIssuer
	URLs          *siteurl.Builder
	Catalog       *pagebuilder.Catalog
	ProcessEntry  command.Commander[entriescmd.ProcessEntryCommand]
	SaveProviders command.Commander[entriescmd.SaveProvidersCommand]
	AuthSecret    []byte
	Gatherer      prometheus.Gatherer
	Logger        interfaces.Logger
}

// Server exposes the admin screens, the AJAX endpoint and the submission
// endpoint.
type Server struct {
	basePath      string
	registry      *providers.Registry
	settings      *settings.Service
	nonces        NonceIssuer
	urls          *siteurl.Builder
	catalog       *pagebuilder.Catalog
	processEntry  command.Commander[entriescmd.ProcessEntryCommand]
	saveProviders command.Commander[entriescmd.SaveProvidersCommand]
	authSecret    []byte
	gatherer      prometheus.Gatherer
	logger        interfaces.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, ErrRegistryRequired
	}
	if cfg.Settings == nil {
		return nil, ErrSettingsRequired
	}
	if len(cfg.AuthSecret) == 0 {
		return nil, ErrSecretRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Server{
		basePath:      joinPath(cfg.BasePath, ""),
		registry:      cfg.Registry,
		settings:      cfg.Settings,
		nonces:        cfg.Nonces,
		urls:          cfg.URLs,
		catalog:       cfg.Catalog,
		processEntry:  cfg.ProcessEntry,
		saveProviders: cfg.SaveProviders,
		authSecret:    cfg.AuthSecret,
		gatherer:      cfg.Gatherer,
		logger:        logger,
	}, nil
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(s.sessionMiddleware)
	s.Register(router)
	return router
}

// Register mounts the routes on r. Callers are expected to install the
// session middleware themselves.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.processEntry != nil {
		r.Post("/forms/{formID}/entries", s.submitEntry)
	}

	r.Route(s.basePath, func(admin chi.Router) {
		admin.Post("/admin-ajax", s.ajax)
		admin.With(requireCapability(permissions.EditForms)).Get("/builder/{formID}/providers", s.builderPage)
		if s.saveProviders != nil {
			admin.With(requireCapability(permissions.EditForms)).Post("/builder/{formID}/providers", s.builderSave)
		}
		admin.With(requireCapability(permissions.ManageOptions)).Get("/settings/integrations", s.integrationsPage)
		if s.catalog != nil {
			admin.With(requireCapability(permissions.EditForms)).Get("/pagebuilder/modules/{module}", s.moduleModal)
		}
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithContext(r.Context()).Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) userID(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok {
		return user.ID
	}
	return ""
}

func (s *Server) issueNonce(ctx context.Context, action string) string {
	if s.nonces == nil {
		return ""
	}
	token, err := s.nonces.Issue(action, s.userID(ctx))
	if err != nil {
		s.logger.Error("http.nonce_issue_failed", "action", action, "error", err)
		return ""
	}
	return token
}

func (s *Server) url(build func() (string, error)) string {
	if s.urls == nil {
		return ""
	}
	out, err := build()
	if err != nil {
		s.logger.Error("http.url_build_failed", "error", err)
		return ""
	}
	return out
}

func trimmed(values map[string][]string, key string) string {
	if vals := values[key]; len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}
