// Package statusapi exposes the executor's minimal, unauthenticated HTTP
// status surface: a liveness probe and an operator-facing status snapshot.
// The teacher's dependency graph carries no HTTP router (blackhole.go is a
// batch/daemon process, never a server), and nothing else in the pack
// offers a router sized for a two-route surface, so this is the one
// package built on net/http directly rather than a third-party dep.
package statusapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

// Status mirrors executor.Status field-for-field; defined independently so
// statusapi does not import internal/executor just to read a struct shape.
// cmd/executor adapts executor.Executor.Status into this shape.
type Status struct {
	Running         bool
	OperatorAddress common.Address
	CheckIntervalMs int64
	CooldownMs      int64
	AttemptedCount  int
	ContractAddress common.Address
}

// StatusFunc reads the current executor status snapshot on demand.
type StatusFunc func() Status

// Server wraps the net/http.ServeMux the way blackhole.go wraps nothing —
// there is no router library in the teacher's stack, so the two routes are
// registered directly.
type Server struct {
	mux     *http.ServeMux
	source  StatusFunc
	enabled bool
}

// New builds the status server. enabled reflects ENABLE_EXECUTOR: the
// /health response still serves 200 with executor.enabled=false when the
// sweep loop is configured off, per §4.5.
func New(source StatusFunc, enabled bool) *Server {
	s := &Server{mux: http.NewServeMux(), source: source, enabled: enabled}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/executor/status", s.handleExecutorStatus)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status   string         `json:"status"`
	Service  string         `json:"service"`
	Executor executorHealth `json:"executor"`
}

type executorHealth struct {
	Enabled bool `json:"enabled"`
	Running bool `json:"running"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.source()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: "limitorderdex-executor",
		Executor: executorHealth{
			Enabled: s.enabled,
			Running: status.Running,
		},
	})
}

type executorStatusResponse struct {
	Running         bool   `json:"running"`
	OperatorAddress string `json:"operator_address"`
	CheckIntervalMs int64  `json:"check_interval_ms"`
	CooldownMs      int64  `json:"cooldown_ms"`
	AttemptedCount  int    `json:"attempted_count"`
	ContractAddress string `json:"contract_address"`
}

func (s *Server) handleExecutorStatus(w http.ResponseWriter, r *http.Request) {
	status := s.source()
	writeJSON(w, http.StatusOK, executorStatusResponse{
		Running:         status.Running,
		OperatorAddress: status.OperatorAddress.Hex(),
		CheckIntervalMs: status.CheckIntervalMs,
		CooldownMs:      status.CooldownMs,
		AttemptedCount:  status.AttemptedCount,
		ContractAddress: status.ContractAddress.Hex(),
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("statusapi: encode response: %v", err)
	}
}
