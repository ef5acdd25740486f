package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/platform/metrics"
)

// Version is reported by /health.
const Version = "1.0.0"

// NewRouter mounts every endpoint on one mux.
func NewRouter(api *PlayerAPI, replay *ReplayHandler, hub *Hub, m *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	replay.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", healthHandler(m.StartTime))
	mux.HandleFunc("GET /metrics", m.Handler())
	mux.HandleFunc("GET /metrics/prometheus", m.PrometheusHandler())
	if hub != nil {
		mux.HandleFunc("GET /ws", hub.ServeWS)
	}
	return mux
}

func healthHandler(started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(started).Seconds(),
			"service":   "werewolf-agent",
			"version":   Version,
		})
	}
}
