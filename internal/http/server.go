package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"mydash/internal/budget"
	"mydash/internal/cache"
	applog "mydash/internal/log"
	"mydash/internal/rollup"
	"mydash/internal/services"
	"mydash/internal/store"
	appweb "mydash/web"
)

// Options configures the server beyond its dependencies.
type Options struct {
	Addr        string
	DefaultTier budget.Tier
	SessionTTL  time.Duration
	CacheSize   int
	CacheTTL    time.Duration
}

type Server struct {
	http.Server

	records *services.RecordService
	rollups *services.RollupService
	users   store.UserStore

	defaultTier budget.Tier
	sessions    *sessionManager
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	httpLog *applog.HTTPLogger

	// Rollups and projections are cheap to recompute but hit three
	// collections; a short-TTL cache absorbs dashboard refresh storms.
	rollupCache     *cache.LRUCache[rollup.Result]
	projectionCache *cache.LRUCache[[]rollup.ProjectionRow]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options, records *services.RecordService, rollups *services.RollupService, users store.UserStore) *Server {
	mux := http.NewServeMux()

	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.DefaultTier == "" {
		opts.DefaultTier = budget.TierLow
	}

	baseLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	chain := applog.Middleware(baseLogger)(
		applog.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(mux))

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: chain,
		},
		httpLog:         applog.NewHTTPLogger(baseLogger),
		records:         records,
		rollups:         rollups,
		users:           users,
		defaultTier:     opts.DefaultTier,
		sessions:        newSessionManager(opts.SessionTTL),
		rateLimiter:     newRateLimiter(60, time.Minute),
		metrics:         &securityMetrics{},
		rollupCache:     cache.NewLRUCache[rollup.Result](opts.CacheSize, opts.CacheTTL),
		projectionCache: cache.NewLRUCache[[]rollup.ProjectionRow](opts.CacheSize, opts.CacheTTL),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.rollupCache)
	s.cacheManager.Register(s.projectionCache)
	s.cacheManager.Register(s.sessions)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.FileServer(http.FS(sub))
		mux.Handle("GET /", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Auth endpoints stay outside the session gate.
	mux.HandleFunc("POST /api/auth/bootstrap", s.guard(s.handleBootstrap))
	mux.HandleFunc("POST /api/auth/login", s.guard(s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.guard(s.handleLogout))
	mux.HandleFunc("GET /api/auth/me", s.guard(s.handleMe))

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return s.guard(s.requireAuth(h))
	}

	mux.HandleFunc("GET /api/expenses", protect(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", protect(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", protect(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", protect(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/workouts", protect(s.handleListWorkouts))
	mux.HandleFunc("POST /api/workouts", protect(s.handleCreateWorkout))
	mux.HandleFunc("PUT /api/workouts/{id}", protect(s.handleUpdateWorkout))
	mux.HandleFunc("DELETE /api/workouts/{id}", protect(s.handleDeleteWorkout))

	mux.HandleFunc("GET /api/drinks", protect(s.handleListDrinkLogs))
	mux.HandleFunc("POST /api/drinks", protect(s.handleUpsertDrinkLog))
	mux.HandleFunc("PUT /api/drinks/{id}", protect(s.handleUpdateDrinkLog))
	mux.HandleFunc("DELETE /api/drinks/{id}", protect(s.handleDeleteDrinkLog))

	mux.HandleFunc("GET /api/todos", protect(s.handleListTodos))
	mux.HandleFunc("POST /api/todos", protect(s.handleCreateTodo))
	mux.HandleFunc("PUT /api/todos/{id}", protect(s.handleUpdateTodo))
	mux.HandleFunc("DELETE /api/todos/{id}", protect(s.handleDeleteTodo))

	mux.HandleFunc("GET /api/rollup", protect(s.handleRollup))
	mux.HandleFunc("GET /api/projection", protect(s.handleProjection))
	mux.HandleFunc("GET /api/export", protect(s.handleExportMonth))
	mux.HandleFunc("GET /api/metrics", protect(s.handleMetrics))

	return s
}

// guard adds security headers, rate limiting and request logging.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := r.Context()
		clientIP := extractClientIP(r)
		logger := applog.FromContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
		}

		// Rate limit writes only; dashboard reads are cache-backed.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		s.httpLog.LogStart(ctx, r, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// requireAuth rejects requests without a live session.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.sessions.fromRequest(r); !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		next(w, r)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// invalidateRollups drops cached rollups after any record write.
func (s *Server) invalidateRollups() {
	s.rollupCache.Purge()
	s.projectionCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.snapshot())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
