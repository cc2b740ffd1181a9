package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routina/internal/cache"
	"routina/internal/engine"
	applog "routina/internal/log"
	"routina/internal/middleware/ratelimit"
	"routina/internal/middleware/security"
	"routina/internal/middleware/trace"
	"routina/internal/services"
	"routina/internal/summary"
)

// Server exposes the engine over JSON. Summary reads are cached per user
// and window; every write through the API invalidates the owner's entries.
type Server struct {
	http.Server

	engine      *engine.Engine
	completions *services.CompletionService
	jwtSecret   string
	clock       func() time.Time

	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	cacheManager *cache.Manager
	weeklyCache  *cache.LRUCache[[]summary.DaySummary]
	monthlyCache *cache.LRUCache[summary.MonthSummary]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr, jwtSecret string, eng *engine.Engine, completions *services.CompletionService) *Server {
	mux := http.NewServeMux()

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		engine:       eng,
		completions:  completions,
		jwtSecret:    jwtSecret,
		clock:        time.Now,
		logger:       applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     detector,
		tracer:       trace.NewMiddleware(detector.ExtractClientIP),
		cacheManager: cache.NewManager(),
		weeklyCache:  cache.NewLRUCache[[]summary.DaySummary](200, 5*time.Minute),
		monthlyCache: cache.NewLRUCache[summary.MonthSummary](200, 5*time.Minute),
	}

	s.cacheManager.Register(s.weeklyCache)
	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /routine", s.api(s.handleRoutine))
	mux.HandleFunc("GET /routine/update", s.api(s.handleListHabits))
	mux.HandleFunc("POST /routine", s.api(s.handleCreateHabit))
	mux.HandleFunc("GET /routine/{id}", s.api(s.handleGetHabit))
	mux.HandleFunc("PUT /routine/{id}", s.api(s.handleUpdateHabit))
	mux.HandleFunc("DELETE /routine/{id}", s.api(s.handleDeleteHabit))

	mux.HandleFunc("POST /logTask/complete", s.api(s.handleComplete))
	mux.HandleFunc("GET /logTask/weekly", s.api(s.handleWeekly))
	mux.HandleFunc("GET /logTask/monthly", s.api(s.handleMonthly))
	mux.HandleFunc("GET /logTask/streak", s.api(s.handleStreak))
	mux.HandleFunc("GET /profile/experience", s.api(s.handleExperience))

	mux.HandleFunc("GET /events", s.api(s.handleListEvents))
	mux.HandleFunc("GET /events/todayEvents", s.api(s.handleTodayEvents))
	mux.HandleFunc("POST /events", s.api(s.handleCreateEvent))
	mux.HandleFunc("PUT /events", s.api(s.handleUpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", s.api(s.handleDeleteEvent))

	return s
}

// api is the middleware chain for authenticated JSON routes: tracing,
// context logger, security headers, write rate limiting, token auth,
// request metrics.
func (s *Server) api(next http.HandlerFunc) http.HandlerFunc {
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	authed := s.withAuth(next)

	chained := s.tracer.Middleware(applog.Middleware(s.logger)(headers.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.Suspicious(r) {
			applog.FromContext(r.Context()).Warn("Suspicious request rejected",
				"path", r.URL.Path, "client_ip", s.detector.ExtractClientIP(r))
			writeError(w, http.StatusBadRequest, "malformed request")
			return
		}
		if isWrite(r.Method) && !s.limiter.Allow(s.detector.ExtractClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		authed(w, r)
	}))))

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		chained.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		recordHTTPRequest(r.Method, path, strconv.Itoa(rw.status), time.Since(start))
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateUserCaches drops all cached summaries for a user after a write.
func (s *Server) invalidateUserCaches(userID string) {
	s.weeklyCache.DeletePrefix(userID + ":")
	s.monthlyCache.DeletePrefix(userID + ":")
}

// Shutdown stops the cleanup goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
