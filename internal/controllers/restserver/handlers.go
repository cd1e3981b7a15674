package restserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chrissnell/misolweather/internal/log"
	"github.com/chrissnell/misolweather/internal/types"
	"github.com/gorilla/mux"
)

// StationStatus describes the liveness of one station as seen by the
// reading distributor
type StationStatus struct {
	StationName string     `json:"station_name"`
	Online      bool       `json:"online"`
	LastReading *time.Time `json:"last_reading,omitempty"`
}

// GetLatest returns the most recent reading for every station
func (c *Controller) GetLatest(w http.ResponseWriter, r *http.Request) {
	c.latestMu.RLock()
	readings := make([]types.Reading, 0, len(c.latest))
	for _, reading := range c.latest {
		readings = append(readings, reading)
	}
	c.latestMu.RUnlock()

	writeJSON(w, http.StatusOK, readings)
}

// GetLatestForStation returns the most recent reading for one station
func (c *Controller) GetLatestForStation(w http.ResponseWriter, r *http.Request) {
	station := mux.Vars(r)["station"]

	c.latestMu.RLock()
	reading, ok := c.latest[station]
	c.latestMu.RUnlock()

	if !ok {
		http.Error(w, "no readings received for station", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, reading)
}

// GetStatus reports liveness for every configured station.  A station is
// online when its most recent non-empty reading is younger than its
// communication timeout; the empty reading a station publishes when its
// watchdog fires does not count.
func (c *Controller) GetStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	c.latestMu.RLock()
	statuses := make([]StationStatus, 0, len(c.timeouts))
	for name, timeout := range c.timeouts {
		status := StationStatus{StationName: name}
		if t, ok := c.lastLive[name]; ok {
			lastReading := t
			status.LastReading = &lastReading
			status.Online = now.Sub(t) <= timeout
		}
		statuses = append(statuses, status)
	}
	c.latestMu.RUnlock()

	writeJSON(w, http.StatusOK, statuses)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("error encoding JSON response: %v", err)
	}
}
