package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"bizdash/internal/cache"
	applog "bizdash/internal/log"
	"bizdash/internal/middleware/ratelimit"
	"bizdash/internal/middleware/security"
	"bizdash/internal/middleware/trace"
	"bizdash/internal/records"
	"bizdash/internal/services"
	appweb "bizdash/web"
)

// requestTimeout bounds store calls made while serving a request.
const requestTimeout = 7 * time.Second

// Server wraps http.Server with the catalog store, the dashboard and the
// middleware state that needs stopping on shutdown.
type Server struct {
	http.Server
	store     records.Store
	dashboard *services.Dashboard
	templates *template.Template
	logger    *applog.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	caches   *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

type Options struct {
	Logger             *applog.Logger
	RateLimit          ratelimit.Config
	CacheSweepInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		RateLimit:          ratelimit.DefaultConfig(),
		CacheSweepInterval: 10 * time.Minute,
	}
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, store records.Store, dashboard *services.Dashboard, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})
	}
	if opts.CacheSweepInterval <= 0 {
		opts.CacheSweepInterval = DefaultOptions().CacheSweepInterval
	}

	s := &Server{
		store:     store,
		dashboard: dashboard,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		detector:  security.NewDetector(),
		caches:    cache.NewManager(),
		startedAt: time.Now(),
	}

	s.caches.Register(dashboard.Cache())
	s.caches.StartCleanup(opts.CacheSweepInterval)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit))

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}).Methods(http.MethodGet)

	// Dashboard
	r.HandleFunc("/dashboard", s.handleDashboardPage).Methods(http.MethodGet)
	r.HandleFunc("/ui/dashboard/stats", s.handleDashboardStats).Methods(http.MethodGet)
	r.HandleFunc("/ui/dashboard/income", s.handleDashboardIncome).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/summary", s.handleSummaryJSON).Methods(http.MethodGet)
	r.HandleFunc("/api/dashboard/chart", s.handleChartJSON).Methods(http.MethodGet)

	// Services
	r.HandleFunc("/services", s.handleServicesPage).Methods(http.MethodGet)
	r.HandleFunc("/services", s.handleCreateService).Methods(http.MethodPost)
	r.HandleFunc("/ui/services", s.handleServiceList).Methods(http.MethodGet)
	r.HandleFunc("/ui/services/form", s.handleServiceForm).Methods(http.MethodGet)
	r.HandleFunc("/ui/services/{id}/edit", s.handleServiceForm).Methods(http.MethodGet)
	r.HandleFunc("/services/{id}", s.handleUpdateService).Methods(http.MethodPost, http.MethodPut)
	r.HandleFunc("/services/{id}", s.handleDeleteService).Methods(http.MethodDelete)
	r.HandleFunc("/services/{id}/toggle", s.handleToggleService).Methods(http.MethodPost)
	r.HandleFunc("/services/{id}/delete", s.handleDeleteService).Methods(http.MethodPost)

	// Outer middleware also covers 404 and 405 answers from the router.
	tracer := trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	return tracer.Middleware(s.detector.Middleware(headers.Middleware(r)))
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").
		TriggerErrorNotification("Too many requests. Please try again later.").
		Write(w)
}

// render executes a named template, logging and answering 500 on failure.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, name)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Shutdown stops background cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
