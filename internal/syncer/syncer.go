// Package syncer mirrors Notion database pages into the site's posts directory.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/events"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/images"
	"git.home.luguber.info/inful/notionsync/internal/logfields"
	"git.home.luguber.info/inful/notionsync/internal/metrics"
	"git.home.luguber.info/inful/notionsync/internal/notion"
	"git.home.luguber.info/inful/notionsync/internal/posts"
	"git.home.luguber.info/inful/notionsync/internal/publish"
	"git.home.luguber.info/inful/notionsync/internal/render"
	"git.home.luguber.info/inful/notionsync/internal/retry"
	"git.home.luguber.info/inful/notionsync/internal/state"
)

// Source is the part of the Notion client a sync needs.
type Source interface {
	QueryPublished(ctx context.Context) ([]notion.Page, error)
	QueryDue(ctx context.Context, now time.Time) ([]notion.Page, error)
	RetrievePage(ctx context.Context, id string) (notion.Page, error)
	FetchBlocks(ctx context.Context, pageID string) ([]content.Block, error)
}

// ImageStore localises page images.
type ImageStore interface {
	Localize(ctx context.Context, slug string, blocks []content.Block) content.ImageLocations
	Remove(slug string) error
}

// Committer records written files in version control.
type Committer interface {
	Commit(ctx context.Context, message string, dirs ...string) (publish.Result, error)
}

// Request selects what a run does.
type Request struct {
	Mode       config.SyncMode `json:"mode"`
	PageID     string          `json:"page_id,omitempty"`
	PageStatus string          `json:"status,omitempty"`
}

// Validate checks that webhook runs name a page and a status.
func (r Request) Validate() error {
	webhook := r.Mode == config.SyncModeWebhook
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.Required, validation.In(config.SyncModeScheduled, config.SyncModeWebhook, config.SyncModeManual)),
		validation.Field(&r.PageID, validation.When(webhook, validation.Required.Error("is required (PAGE_ID)"))),
		validation.Field(&r.PageStatus, validation.When(webhook, validation.Required.Error("is required (PAGE_STATUS)"))),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid sync request").
			WithContext("mode", string(r.Mode)).
			Build()
	}
	return nil
}

// Report summarises a run.
type Report struct {
	RunID      string    `json:"run_id"`
	Mode       string    `json:"mode"`
	DryRun     bool      `json:"dry_run,omitempty"`
	Written    int       `json:"written"`
	Skipped    int       `json:"skipped"`
	Deleted    int       `json:"deleted"`
	Failed     int       `json:"failed"`
	Files      []string  `json:"files,omitempty"`
	Commit     string    `json:"commit,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Changed reports whether the run touched any post.
func (r Report) Changed() bool { return r.Written+r.Deleted > 0 }

// Syncer runs sync requests one at a time.
type Syncer struct {
	mu sync.Mutex

	cfg      *config.Config
	source   Source
	images   ImageStore
	posts    *posts.Store
	state    *state.Store
	renderer *render.Renderer
	events   events.Publisher
	recorder metrics.Recorder
	git      Committer
	progress Progress
	dryRun   bool
	now      func() time.Time
	closers  []func() error
}

// Option customises a Syncer.
type Option func(*Syncer)

func WithEvents(p events.Publisher) Option { return func(s *Syncer) { s.events = p } }

func WithRecorder(r metrics.Recorder) Option { return func(s *Syncer) { s.recorder = r } }

func WithCommitter(c Committer) Option { return func(s *Syncer) { s.git = c } }

func WithProgress(p Progress) Option { return func(s *Syncer) { s.progress = p } }

// WithDryRun renders pages without touching files, state, events or git.
func WithDryRun(dry bool) Option { return func(s *Syncer) { s.dryRun = dry } }

func WithClock(now func() time.Time) Option { return func(s *Syncer) { s.now = now } }

// New wires a Syncer from explicit collaborators.
func New(cfg *config.Config, source Source, imgs ImageStore, st *state.Store, opts ...Option) *Syncer {
	s := &Syncer{
		cfg:      cfg,
		source:   source,
		images:   imgs,
		posts:    posts.NewStore(cfg.Output.PostsDir),
		state:    st,
		renderer: render.New(render.Options{CTAColumnKeywords: cfg.Render.CTAColumnKeywords}),
		events:   events.Noop{},
		recorder: metrics.NoopRecorder{},
		progress: noopProgress{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds a Syncer and its collaborators from configuration. NATS and git
// publishing are only wired when enabled. Close releases what Open opened.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Syncer, error) {
	st, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, err
	}
	client := notion.New(cfg.Notion, notion.WithRetryPolicy(retry.FromConfig(cfg.Retry)))
	imgs := images.New(cfg.Output, &http.Client{Timeout: 2 * cfg.Notion.TimeoutDuration()})

	base := []Option{}
	closers := []func() error{st.Close}
	if cfg.Events.NATS.Enabled {
		pub, err := events.NewNATS(ctx, cfg.Events.NATS)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		base = append(base, WithEvents(pub))
		closers = append(closers, pub.Close)
	}
	if cfg.Publish.Git.Enabled {
		var pubOpts []publish.Option
		if cfg.Publish.Git.Token != "" {
			pubOpts = append(pubOpts, publish.WithAuth(publish.TokenAuth(cfg.Publish.Git.Token)))
		}
		base = append(base, WithCommitter(publish.New(cfg.Publish.Git, pubOpts...)))
	}

	s := New(cfg, client, imgs, st, append(base, opts...)...)
	s.closers = closers
	return s, nil
}

// Close releases resources opened by Open.
func (s *Syncer) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// State exposes the state store for status reporting.
func (s *Syncer) State() *state.Store { return s.state }

// run carries per-run bookkeeping.
type run struct {
	id     string
	mode   config.SyncMode
	log    *slog.Logger
	report *Report
}

// Run executes req. Concurrent calls are serialised.
func (s *Syncer) Run(ctx context.Context, req Request) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	r := &run{
		id:   id,
		mode: req.Mode,
		log:  slog.With(logfields.RunID(id), logfields.Mode(string(req.Mode))),
		report: &Report{
			RunID:     id,
			Mode:      string(req.Mode),
			DryRun:    s.dryRun,
			StartedAt: s.now(),
		},
	}
	r.log.Info("Sync started", slog.Bool("dry_run", s.dryRun))

	var err error
	switch req.Mode {
	case config.SyncModeScheduled:
		err = s.runScheduled(ctx, r)
	case config.SyncModeWebhook:
		err = s.runWebhook(ctx, r, req.PageID, req.PageStatus)
	default:
		err = s.runManual(ctx, r)
	}

	if err == nil && r.report.Changed() && s.git != nil && !s.dryRun {
		err = s.commit(ctx, r)
	}
	s.finish(ctx, r, err)
	return *r.report, err
}

func (s *Syncer) commit(ctx context.Context, r *run) error {
	rep := r.report
	msg := fmt.Sprintf("notionsync: %s sync (%d written, %d deleted)", rep.Mode, rep.Written, rep.Deleted)
	res, err := s.git.Commit(ctx, msg, s.cfg.Output.PostsDir, s.cfg.Output.ImagesDir)
	if err != nil {
		return err
	}
	rep.Commit = res.Hash
	return nil
}

func (s *Syncer) finish(ctx context.Context, r *run, runErr error) {
	rep := r.report
	rep.FinishedAt = s.now()
	elapsed := rep.FinishedAt.Sub(rep.StartedAt)

	outcome := metrics.ResultSuccess
	switch {
	case ctx.Err() != nil:
		outcome = metrics.ResultCanceled
	case runErr != nil:
		outcome = metrics.ResultFailed
	}
	s.recorder.ObserveRunDuration(rep.Mode, elapsed)
	s.recorder.IncRunOutcome(rep.Mode, outcome)
	if runErr == nil {
		s.recorder.SetLastSuccess(rep.FinishedAt)
	}

	attrs := []any{
		slog.Int("written", rep.Written),
		slog.Int("skipped", rep.Skipped),
		slog.Int("deleted", rep.Deleted),
		slog.Int("failed", rep.Failed),
		logfields.DurationMS(float64(elapsed.Milliseconds())),
	}
	if runErr != nil {
		r.log.Error("Sync failed", append(attrs, logfields.Error(runErr))...)
	} else {
		r.log.Info("Sync finished", attrs...)
	}

	if s.dryRun {
		return
	}

	record := state.Run{
		ID:         rep.RunID,
		Mode:       rep.Mode,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
		Written:    rep.Written,
		Skipped:    rep.Skipped,
		Deleted:    rep.Deleted,
		Failed:     rep.Failed,
	}
	if runErr != nil {
		record.Error = runErr.Error()
	}
	// The run context may already be canceled; the record is still wanted.
	if err := s.state.RecordRun(context.WithoutCancel(ctx), record); err != nil {
		r.log.Warn("Failed to record run", logfields.Error(err))
	}

	if rep.Changed() {
		s.emit(ctx, r, events.Event{Type: events.RunCompleted, Written: rep.Written, Deleted: rep.Deleted})
	}
}

// emit publishes e; delivery failures never fail a run.
func (s *Syncer) emit(ctx context.Context, r *run, e events.Event) {
	if s.dryRun {
		return
	}
	e.RunID = r.id
	e.Mode = string(r.mode)
	e.Timestamp = s.now().UTC()
	if err := s.events.Publish(ctx, e); err != nil {
		r.log.Warn("Failed to publish event", slog.String("type", string(e.Type)), logfields.Error(err))
	}
}
