package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadcheck/internal/engine"
	"github.com/sells-group/leadcheck/internal/mapper"
	"github.com/sells-group/leadcheck/internal/model"
	"github.com/sells-group/leadcheck/internal/parser"
	"github.com/sells-group/leadcheck/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead validation HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := engine.New(cfg.Engine)
		if err != nil {
			return eris.Wrap(err, "serve: build engine")
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: init store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "serve: migrate store")
		}

		srv := newServer(eng, st)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srv.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("serve: shutting down")
			httpSrv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("serve: starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server bundles the validation engine and run store behind HTTP handlers.
type server struct {
	engine *engine.Engine
	store  store.Store

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newServer(eng *engine.Engine, st store.Store) *server {
	return &server{
		engine:   eng,
		store:    st,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/validate", s.handleValidate)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})

	return r
}

func corsOrigins() []string {
	if len(cfg.Server.CORSOrigins) > 0 {
		return cfg.Server.CORSOrigins
	}
	return []string{"*"}
}

// rateLimit applies a per-IP token bucket.
func (s *server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiterFor(clientIP(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) limiterFor(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	lim, ok := s.limiters[ip]
	if !ok {
		perMinute := cfg.Server.RatePerMinute
		if perMinute <= 0 {
			perMinute = 30
		}
		lim = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
		s.limiters[ip] = lim
	}
	return lim
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleValidate accepts a CSV body, runs the pipeline synchronously and
// returns the report. The run is persisted either way.
func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "api"
	}
	source = filepath.Base(source)

	run, err := s.store.CreateRun(ctx, source)
	if err != nil {
		zap.L().Error("serve: create run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create run")
		return
	}

	maxBytes := cfg.Server.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)

	report, err := s.engine.ValidateCSV(ctx, body)
	if err != nil {
		if failErr := s.store.FailRun(ctx, run.ID, err.Error()); failErr != nil {
			zap.L().Warn("serve: fail run", zap.Error(failErr))
		}
		status := http.StatusInternalServerError
		if eris.Is(err, parser.ErrEmptyInput) || eris.Is(err, mapper.ErrMissingEmailColumn) {
			status = http.StatusUnprocessableEntity
		}
		zap.L().Warn("serve: validation failed",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
		writeError(w, status, err.Error())
		return
	}

	if err := s.store.CompleteRun(ctx, run.ID, report); err != nil {
		zap.L().Warn("serve: complete run", zap.Error(err))
	}

	zap.L().Info("serve: validation complete",
		zap.String("run_id", run.ID),
		zap.Int("total", report.Total),
		zap.Int("valid", report.ValidCount),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": run.ID,
		"report": report,
	})
}

func (s *server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Limit: 50}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = model.RunStatus(status)
	}
	if source := r.URL.Query().Get("source"); source != "" {
		filter.Source = source
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("serve: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
