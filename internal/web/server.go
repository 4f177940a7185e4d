// Package web provides the HTTP server exposing the conversion engine.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jomardyan/ToolBox/internal/config"
	"github.com/jomardyan/ToolBox/internal/core"
	"github.com/jomardyan/ToolBox/internal/history"
	appmw "github.com/jomardyan/ToolBox/internal/web/middleware"
)

// Server is the HTTP front end of the converter.
type Server struct {
	cfg     *config.Config
	history history.Store
	limiter *ConversionLimiter
	router  *chi.Mux
	server  *http.Server

	rateLimiters []*rateLimiter
}

// NewServer creates a Server. A nil store disables history.
func NewServer(cfg *config.Config, store history.Store) *Server {
	if store == nil {
		store = history.NopStore{}
	}
	s := &Server{
		cfg:     cfg,
		history: store,
		limiter: NewConversionLimiter(cfg.Convert.MaxConcurrent, cfg.Convert.MaxWait),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Browser UI
	s.router.Get("/", s.handleIndex)
	s.router.Post("/convert", s.handleConvertForm)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(appmw.APIKeyAuth(s.cfg.Security))
		if s.cfg.Rate.Enabled {
			r.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
		}

		r.Get("/formats", s.handleFormats)
		r.Get("/history", s.handleHistory)
		r.Get("/status", s.handleStatus)

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.newRateLimiter(s.cfg.Rate.ConvertLimit, time.Minute).middleware)
			}
			r.Post("/convert", s.handleConvert)
			r.Post("/extract", s.handleExtract)
		})
	})
}

// Start listens on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for running conversions and
// stops background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.rateLimiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	if status := s.limiter.Status(); status.Active > 0 {
		slog.Info("waiting for conversions to finish", "active", status.Active)
		if drainErr := s.limiter.WaitForDrain(ctx); drainErr != nil {
			slog.Warn("conversions did not finish in time", "error", drainErr)
		}
	}
	return err
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// The UI ships one inline stylesheet and no scripts.
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'none'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

var errRateLimited = errors.New("rate limit exceeded")

// rateLimiter is a fixed-window request counter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	s.rateLimiters = append(s.rateLimiters, rl)
	go rl.cleanup()
	return rl
}

// cleanup drops idle visitors until stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow consumes a token for ip, reporting whether the request may proceed.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists || time.Since(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			msg := core.MapError(errRateLimited)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error:   errRateLimited.Error(),
				Message: msg.Message,
				Action:  msg.Action,
				Code:    msg.Code,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns RemoteAddr without its port. TrustedRealIP has already
// replaced it with the forwarded client when the proxy is trusted.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
