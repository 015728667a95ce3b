package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/schmitti92/serverfinal/pkg/log"
)

// Stats exposes the counters reported by the health endpoint.
type Stats interface {
	RoomCount() int
	ClientCount() int
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool  `json:"ok"`
	TS      int64 `json:"ts"`
	Rooms   int   `json:"rooms"`
	Clients int   `json:"clients"`
}

// NewRouter builds the operational HTTP routes. The WebSocket handler is
// mounted on /ws of the same router so one listener serves everything.
func NewRouter(stats Stats, wsHandler http.HandlerFunc) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("barikade-server ok")); err != nil {
			log.Debug("Failed to write liveness response: %v", err)
		}
	}).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := HealthResponse{
			OK:      true,
			TS:      time.Now().UnixMilli(),
			Rooms:   stats.RoomCount(),
			Clients: stats.ClientCount(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("Failed to encode health response: %v", err)
		}
	}).Methods(http.MethodGet)

	router.HandleFunc("/ws", wsHandler)

	return router
}
