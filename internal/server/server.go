// Package server exposes actuator evaluation over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/san-kum/geartrain/internal/storage"
)

const (
	DefaultRate  = 5
	DefaultBurst = 10

	shutdownTimeout = 5 * time.Second
)

type Options struct {
	// Workers bounds batch evaluation concurrency; zero uses every CPU.
	Workers int
	// Store persists runs posted with save set. Nil disables /api/runs.
	Store *storage.Store
	Rate  rate.Limit
	Burst int
}

type Server struct {
	router *mux.Router
	opts   Options
}

func New(opts Options) *Server {
	if opts.Rate == 0 {
		opts.Rate = DefaultRate
	}
	if opts.Burst == 0 {
		opts.Burst = DefaultBurst
	}
	s := &Server{router: mux.NewRouter(), opts: opts}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.health).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(NewIPRateLimiter(s.opts.Rate, s.opts.Burst).LimitMiddleware)

	api.HandleFunc("/motors", s.listMotors).Methods("GET")
	api.HandleFunc("/materials", s.listMaterials).Methods("GET")
	api.HandleFunc("/presets", s.listPresets).Methods("GET")
	api.HandleFunc("/presets/{name}", s.getPreset).Methods("GET")
	api.HandleFunc("/problems", s.listProblems).Methods("GET")
	api.HandleFunc("/problems/{name}", s.getProblem).Methods("GET")
	api.HandleFunc("/problems/{name}/evaluate", s.evaluateBatch).Methods("POST")
	api.HandleFunc("/evaluate", s.evaluate).Methods("POST")
	api.HandleFunc("/export/{format}", s.export).Methods("POST")

	if s.opts.Store != nil {
		api.HandleFunc("/runs", s.listRuns).Methods("GET")
		api.HandleFunc("/runs/{id}", s.getRun).Methods("GET")
	}
}

// Handler returns the router wrapped in request logging and CORS.
func (s *Server) Handler() http.Handler {
	return logRequests(cors(s.router))
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
