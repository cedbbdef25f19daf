package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/citygridlabs/intersection-simulator/core"
	"github.com/citygridlabs/intersection-simulator/internal/logging"
	"github.com/citygridlabs/intersection-simulator/internal/observability"
	"github.com/citygridlabs/intersection-simulator/model"
)

// Server exposes the simulation's query and command surface over HTTP JSON
// plus a WebSocket stream of live snapshots, so an external renderer can
// draw the intersection without linking the core.
//
// The simulation itself is single-threaded; the server shares a lock with
// the host tick loop and takes it around every access.
type Server struct {
	mu  sync.Locker
	sim *core.Simulation
	log logging.Logger
	col *observability.SimCollector

	tracer   trace.Tracer
	upgrader websocket.Upgrader

	// StreamInterval is the cadence of WebSocket frames.
	StreamInterval time.Duration
}

// New constructs a server around the simulation. The locker must be the same
// one the host tick loop holds while calling Tick.
func New(sim *core.Simulation, mu sync.Locker, log logging.Logger, col *observability.SimCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		mu:     mu,
		sim:    sim,
		log:    log,
		col:    col,
		tracer: otel.Tracer("intersection-simulator/web"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		StreamInterval: 100 * time.Millisecond,
	}
}

// Routes returns the full handler tree with logging and metrics middleware
// applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/vehicles", s.handleVehicles)
	mux.HandleFunc("GET /api/decisions", s.handleDecisions)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("POST /api/control", s.handleControl)
	mux.HandleFunc("GET /ws", s.handleStream)
	return s.instrument(mux)
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, reqLog := logging.WithRequestLogger(r.Context(), s.log)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(start).Seconds()
		if s.col != nil {
			s.col.RecordHTTP(r.URL.Path, r.Method, rec.code, elapsed)
		}
		reqLog.Debug(ctx, "http request",
			logging.String("path", r.URL.Path),
			logging.String("method", r.Method),
			logging.Int("code", rec.code))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// stateFrame is the composite snapshot served on /api/state and streamed
// over the WebSocket.
type stateFrame struct {
	Phase           model.PhaseState        `json:"phase"`
	TimeUntilChange float64                 `json:"time_until_change"`
	Paused          bool                    `json:"paused"`
	SpawnRate       model.SpawnRate         `json:"spawn_rate"`
	Statistics      model.Statistics        `json:"statistics"`
	LastDecision    model.Decision          `json:"last_decision"`
	Vehicles        []model.VehicleSnapshot `json:"vehicles,omitempty"`
}

func (s *Server) frame(withVehicles bool) stateFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := stateFrame{
		Phase:           s.sim.PhaseState(),
		TimeUntilChange: s.sim.TimeUntilChange(),
		Paused:          s.sim.Paused(),
		SpawnRate:       s.sim.SpawnRate(),
		Statistics:      s.sim.Statistics(),
		LastDecision:    s.sim.LastDecision(),
	}
	if withVehicles {
		f.Vehicles = s.sim.FleetSnapshot()
	}
	return f
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.frame(false))
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	vehicles := s.sim.FleetSnapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := s.sim.DecisionHistory()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summary := s.sim.TrafficSummary()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, summary)
}

// controlRequest mirrors the host keyboard controls of the original
// simulator: phase overrides, emergency toggle, density selection, pause,
// and reset.
type controlRequest struct {
	Command   string             `json:"command"`
	Group     string             `json:"group,omitempty"`
	Direction string             `json:"direction,omitempty"`
	Rate      string             `json:"rate,omitempty"`
	Weights   map[string]float64 `json:"weights,omitempty"`
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "control")
	defer span.End()

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	span.SetAttributes(attribute.String("command", req.Command))

	s.mu.Lock()
	err := s.apply(req)
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Info(ctx, "control command applied", logging.String("command", req.Command))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apply(req controlRequest) error {
	switch req.Command {
	case "force_phase":
		group, err := model.ParseGroup(req.Group)
		if err != nil {
			return err
		}
		s.sim.ForcePhase(group)
	case "cycle_phase":
		s.sim.CyclePhase()
	case "set_emergency":
		dir, err := model.ParseDirection(req.Direction)
		if err != nil {
			return err
		}
		s.sim.SetEmergency(dir)
	case "clear_emergency":
		s.sim.ClearEmergency()
	case "set_spawn_rate":
		rate, err := model.ParseSpawnRate(req.Rate)
		if err != nil {
			return err
		}
		s.sim.SetSpawnRate(rate)
	case "set_weights":
		weights := make(map[model.Direction]float64, len(req.Weights))
		for name, w := range req.Weights {
			dir, err := model.ParseDirection(name)
			if err != nil {
				return err
			}
			weights[dir] = w
		}
		return s.sim.SetDirectionWeights(weights)
	case "pause":
		s.sim.SetPaused(true)
	case "resume":
		s.sim.SetPaused(false)
	case "reset":
		s.sim.Reset()
	default:
		return fmt.Errorf("unknown command %q", req.Command)
	}
	return nil
}

// handleStream upgrades to a WebSocket and pushes full frames (including
// vehicle positions) at StreamInterval until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", logging.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// Drain client messages so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.StreamInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(s.frame(true)); err != nil {
			return
		}
	}
}
