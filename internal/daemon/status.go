package daemon

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/state"
	"git.home.luguber.info/inful/notionsync/internal/syncer"
	"git.home.luguber.info/inful/notionsync/internal/version"
)

const recentRunLimit = 20

// StatusResponse describes the daemon and its recent runs.
type StatusResponse struct {
	Version    string         `json:"version"`
	StartedAt  time.Time      `json:"started_at"`
	Schedule   string         `json:"schedule"`
	NextRun    *time.Time     `json:"next_run,omitempty"`
	LastReport *syncer.Report `json:"last_report,omitempty"`
	RecentRuns []RunStatus    `json:"recent_runs"`
}

// RunStatus is one recorded run.
type RunStatus struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Written    int       `json:"written"`
	Skipped    int       `json:"skipped"`
	Deleted    int       `json:"deleted"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

func runStatus(r state.Run) RunStatus {
	return RunStatus{
		ID:         r.ID,
		Mode:       r.Mode,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Written:    r.Written,
		Skipped:    r.Skipped,
		Deleted:    r.Deleted,
		Failed:     r.Failed,
		Error:      r.Error,
	}
}

// Status collects the current daemon status.
func (d *Daemon) Status(r *http.Request) (StatusResponse, error) {
	d.mu.RLock()
	cfg, runner, last := d.cfg, d.runner, d.last
	d.mu.RUnlock()

	resp := StatusResponse{
		Version:    version.Version,
		StartedAt:  d.startedAt,
		Schedule:   cfg.Daemon.Schedule,
		LastReport: last,
		RecentRuns: []RunStatus{},
	}
	if d.scheduler != nil {
		if next, ok := d.scheduler.NextRun(); ok {
			resp.NextRun = &next
		}
	}
	if runner == nil || runner.State() == nil {
		return resp, nil
	}
	runs, err := runner.State().RecentRuns(r.Context(), recentRunLimit)
	if err != nil {
		return resp, err
	}
	for _, run := range runs {
		resp.RecentRuns = append(resp.RecentRuns, runStatus(run))
	}
	return resp, nil
}

func (d *Daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := d.Status(r)
	if err != nil {
		d.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryState, "failed to read run history").Build())
		return
	}
	_ = writeJSON(w, http.StatusOK, resp)
}
