package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"tourreport/internal/log"
	"tourreport/internal/middleware/ratelimit"
	"tourreport/internal/middleware/security"
	"tourreport/internal/middleware/trace"
	"tourreport/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Config carries the server settings taken from the application config.
type Config struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *log.Logger
}

// Server exposes the tour service as a JSON API with CSV and PDF downloads.
type Server struct {
	http.Server
	svc      *services.TourService
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc *services.TourService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:      svc,
		logger:   logger,
		detector: security.NewDetector(),
		tracer:   trace.NewMiddleware(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimited)(h)
	h = s.detector.Middleware(logger)(h)
	h = log.RequestLogger(logger, trace.FromRequest, s.detector.ExtractClientIP)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/tour", s.handleGetTour)
	mux.HandleFunc("PUT /api/tour", s.handlePutTour)
	mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/profile", s.handlePutProfile)

	mux.HandleFunc("GET /api/entries/drafts", s.handleListDrafts)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /api/entries/{id}", s.handleGetEntry)
	mux.HandleFunc("PATCH /api/entries/{id}", s.handlePatchEntry)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("PUT /api/entries/{id}/date/{part}", s.handleSetDatePart)
	mux.HandleFunc("POST /api/entries/{id}/save", s.handleSaveEntry)
	mux.HandleFunc("POST /api/entries/{id}/{section}/items", s.handleAddItem)
	mux.HandleFunc("PATCH /api/entries/{id}/{section}/items/{itemID}", s.handlePatchItem)
	mux.HandleFunc("DELETE /api/entries/{id}/{section}/items/{itemID}", s.handleRemoveItem)

	mux.HandleFunc("GET /api/months", s.handleListMonths)
	mux.HandleFunc("GET /api/reports/{year}/{month}", s.handleReport)
	mux.HandleFunc("GET /api/reports/{year}/{month}/csv", s.handleReportCSV)
	mux.HandleFunc("GET /api/reports/{year}/{month}/pdf", s.handleReportPDF)
	mux.HandleFunc("GET /api/reports/{year}/{month}/summary", s.handleReportSummary)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// Shutdown stops accepting requests, waits for active ones and stops the
// rate limiter's cleanup goroutine. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ListenAndServe runs until Shutdown; a clean shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr, log.FieldOperation, log.OpStartup)
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
