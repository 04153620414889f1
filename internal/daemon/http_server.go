package daemon

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/logfields"
	"git.home.luguber.info/inful/notionsync/internal/metrics"
	"git.home.luguber.info/inful/notionsync/internal/syncer"
)

// SecretHeader carries the shared webhook secret.
const SecretHeader = "X-Notionsync-Secret"

const maxWebhookBody = 1 << 20

// Handler returns the daemon's HTTP routes.
func (d *Daemon) Handler() http.Handler {
	cfg := d.config()
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+cfg.Daemon.Webhook.Path, d.handleWebhook)
	mux.HandleFunc("GET "+cfg.Monitoring.Health.Path, d.handleHealth)
	mux.HandleFunc("GET /status", d.handleStatus)
	if cfg.Monitoring.Metrics.Enabled {
		mux.Handle("GET "+cfg.Monitoring.Metrics.Path, metrics.HTTPHandler(d.registry))
	}
	return chain(slog.Default(), d.errorAdapter)(mux)
}

// WebhookPayload is the body of a webhook call.
type WebhookPayload struct {
	PageID string `json:"page_id"`
	Status string `json:"status"`
}

func (p WebhookPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PageID, validation.Required),
		validation.Field(&p.Status, validation.Required),
	)
}

// checkWebhookAuth refuses a configuration whose webhook would accept anonymous
// calls, unless that is explicitly allowed.
func checkWebhookAuth(cfg *config.Config) error {
	w := &cfg.Daemon.Webhook
	err := validation.ValidateStruct(w,
		validation.Field(&w.Secret, validation.When(!w.AllowUnauthenticated,
			validation.Required.Error("is required (set daemon.webhook.secret or NOTIONSYNC_WEBHOOK_SECRET)"))),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "webhook secret missing").
			WithContext("path", w.Path).
			Fatal().
			Build()
	}
	if w.Secret == "" {
		slog.Warn("Webhook accepts unauthenticated requests", logfields.Path(w.Path))
	}
	return nil
}

func (d *Daemon) handleWebhook(w http.ResponseWriter, r *http.Request) {
	status, err := d.webhook(w, r)
	d.recorder.IncWebhook(status)
	if err != nil {
		d.errorAdapter.WriteErrorResponse(w, r, err)
	}
}

// webhook handles the request and returns the response status; on error nothing
// has been written yet.
func (d *Daemon) webhook(w http.ResponseWriter, r *http.Request) (int, error) {
	if secret := d.config().Daemon.Webhook.Secret; secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			err := errors.AuthError("invalid webhook secret").Build()
			return d.errorAdapter.StatusCodeFor(err), err
		}
	}

	var payload WebhookPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err := dec.Decode(&payload); err != nil {
		derr := errors.ValidationError("invalid JSON payload").
			WithContext("content_type", r.Header.Get("Content-Type")).
			WithContext("error", err.Error()).
			Build()
		return d.errorAdapter.StatusCodeFor(derr), derr
	}
	if err := payload.Validate(); err != nil {
		derr := errors.WrapError(err, errors.CategoryValidation, "invalid webhook payload").Build()
		return d.errorAdapter.StatusCodeFor(derr), derr
	}

	slog.Info("Webhook received", logfields.PageID(payload.PageID), logfields.Status(payload.Status))
	// The sync finishes even when the caller hangs up.
	ctx := context.WithoutCancel(r.Context())
	rep, err := d.Sync(ctx, syncer.Request{Mode: config.SyncModeWebhook, PageID: payload.PageID, PageStatus: payload.Status})
	if err != nil {
		return d.errorAdapter.StatusCodeFor(err), err
	}
	_ = writeJSON(w, http.StatusAccepted, rep)
	return http.StatusAccepted, nil
}

// writeJSON encodes into a buffer first so a failed encode sends nothing.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Failed writing JSON response body", logfields.Error(err))
		return err
	}
	return nil
}
