package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fraudbusters/internal/dashboard"
	applog "fraudbusters/internal/log"
	"fraudbusters/internal/metrics"
	"fraudbusters/internal/middleware/ratelimit"
	"fraudbusters/internal/middleware/security"
	"fraudbusters/internal/middleware/trace"
	appweb "fraudbusters/web"
)

const staticMaxAge = 3600

// Server serves the dashboard page and its chart API. The dashboard data is
// built before the server exists and never changes afterwards.
type Server struct {
	http.Server
	templates *template.Template
	data      *dashboard.DashboardData
	logger    *applog.Logger
	limiter   *ratelimit.Limiter
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, data *dashboard.DashboardData, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		data:    data,
		logger:  logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		started: time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	resolver, err := newIPResolver(defaultTrustedProxies...)
	if err != nil {
		// defaultTrustedProxies is a constant list
		panic(err)
	}
	throttle := s.limiter.Middleware(resolver.ClientIP, func(r *http.Request) {
		metrics.RateLimited.Inc()
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, resolver.ClientIP(r))
	})

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /api/charts", throttle(http.HandlerFunc(s.handleCharts)))
	mux.Handle("GET /api/charts/{slot}", throttle(http.HandlerFunc(s.handleChart)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(logger, resolver.ClientIP)
	s.Handler = tracer.Middleware(headers.Middleware(mux))

	return s
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
