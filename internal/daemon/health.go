package daemon

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/notionsync/internal/version"
)

// HealthResponse is served on the health path.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Version   string    `json:"version"`
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	d.mu.RLock()
	running := d.runner != nil
	d.mu.RUnlock()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(d.startedAt).Round(time.Second).String(),
		Version:   version.Version,
	}
	code := http.StatusOK
	if !running {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	_ = writeJSON(w, code, resp)
}
