// Package operator implements the invoker's operator-facing HTTP
// surface: liveness/readiness, Prometheus metrics, and a read-only pool
// debug endpoint. It is distinct from any activation-invocation surface,
// which spec.md places out of scope for this module.
package operator

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cuemby/invoker/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PoolSnapshot is the read-only view of pool occupancy the debug
// endpoint reports. cmd/invoker builds it from pool.Supervisor.Snapshot,
// whose Snapshot struct carries the same four counts.
type PoolSnapshot func() (free, busy, prewarmed, capacity int)

// Server mounts the invoker's operator HTTP surface on a chi router.
type Server struct {
	router   chi.Router
	snapshot PoolSnapshot
}

// New builds a Server. snapshot is polled on every request to
// /debug/pool; it should be cheap and non-blocking.
func New(snapshot PoolSnapshot) *Server {
	s := &Server{snapshot: snapshot}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", metrics.HealthHandler())
	r.Get("/readyz", metrics.ReadyHandler())
	r.Get("/livez", metrics.LivenessHandler())
	r.Handle("/metrics", metrics.Handler())
	r.Get("/debug/pool", s.handleDebugPool)

	return r
}

// ServeHTTP satisfies http.Handler so Server can be passed straight to
// http.ListenAndServe.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type poolDebugResponse struct {
	Free      int `json:"free"`
	Busy      int `json:"busy"`
	Prewarmed int `json:"prewarmed"`
	Capacity  int `json:"capacity"`
}

func (s *Server) handleDebugPool(w http.ResponseWriter, r *http.Request) {
	free, busy, prewarmed, capacity := s.snapshot()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(poolDebugResponse{
		Free:      free,
		Busy:      busy,
		Prewarmed: prewarmed,
		Capacity:  capacity,
	})
}
