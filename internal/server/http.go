package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/gw1000/internal/logging"
	"github.com/muurk/gw1000/internal/sensors"
	"github.com/muurk/gw1000/internal/version"
)

// Health is the /healthz document
type Health struct {
	Status    string     `json:"status"`
	LastPoll  *time.Time `json:"last_poll,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Clients   int        `json:"clients"`
	Version   string     `json:"version"`
}

// SensorInfo is one entry of the /api/sensors document
type SensorInfo struct {
	Address     byte   `json:"address"`
	Name        string `json:"name"`
	ID          string `json:"id"`
	Battery     any    `json:"battery"`
	BatteryDesc string `json:"battery_desc"`
	Signal      int    `json:"signal"`
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/latest", s.handleLatest)
	mux.HandleFunc("GET /api/sensors", s.handleSensors)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap := s.Latest()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no observations yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	if s.config.Sensors == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sensor registry not available"})
		return
	}

	states := s.config.Sensors.Connected()
	infos := make([]SensorInfo, 0, len(states))
	for _, st := range states {
		info := SensorInfo{
			Address:     st.Address,
			ID:          st.ID,
			Battery:     st.Battery,
			BatteryDesc: sensors.BatteryDesc(st.Address, st.Battery),
			Signal:      st.Signal,
		}
		if sensor, ok := st.Sensor(); ok {
			info.Name = sensor.Name
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleHealth reports "degraded" with 503 when the last poll failed
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	health := Health{Status: "ok", Clients: s.hub.count(), Version: version.Get().Version}
	if !s.lastPoll.IsZero() {
		t := s.lastPoll
		health.LastPoll = &t
	}
	if s.lastErr != nil {
		health.Status = "degraded"
		health.LastError = s.lastErr.Error()
	}
	s.mu.RUnlock()

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}
