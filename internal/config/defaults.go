package config

import "os"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// defaultAppliers run in order; later domains may rely on earlier ones.
var defaultAppliers = []DefaultApplier{
	&NotionDefaultApplier{},
	&RetryDefaultApplier{},
	&OutputDefaultApplier{},
	&RenderDefaultApplier{},
	&StateDefaultApplier{},
	&PublishDefaultApplier{},
	&EventsDefaultApplier{},
	&DaemonDefaultApplier{},
	&MonitoringDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// NotionDefaultApplier fills API endpoints and falls back to NOTION_* environment variables.
type NotionDefaultApplier struct{}

func (a *NotionDefaultApplier) Domain() string { return "notion" }

func (a *NotionDefaultApplier) ApplyDefaults(cfg *Config) error {
	n := &cfg.Notion
	if n.Token == "" {
		n.Token = os.Getenv("NOTION_TOKEN")
	}
	if n.DatabaseID == "" {
		n.DatabaseID = os.Getenv("NOTION_DATABASE_ID")
	}
	setDefault(&n.APIURL, "https://api.notion.com/v1")
	setDefault(&n.APIVersion, "2022-06-28")
	setDefault(&n.Timeout, "30s")
	if n.PageSize <= 0 {
		n.PageSize = 100
	}
	setDefault(&n.PublishedStatus, "Published")
	setDefault(&n.DeletedStatus, "Deleted")
	setDefault(&n.DefaultContentType, "추천 리스트")
	return nil
}

// RetryDefaultApplier handles retry defaults.
type RetryDefaultApplier struct{}

func (a *RetryDefaultApplier) Domain() string { return "retry" }

func (a *RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	r := &cfg.Retry
	if r.Backoff == "" {
		r.Backoff = RetryBackoffExponential
	}
	setDefault(&r.InitialDelay, "1s")
	setDefault(&r.MaxDelay, "30s")
	if r.MaxRetries == 0 {
		r.MaxRetries = 3
	}
	return nil
}

// OutputDefaultApplier handles output location defaults.
type OutputDefaultApplier struct{}

func (a *OutputDefaultApplier) Domain() string { return "output" }

func (a *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	o := &cfg.Output
	setDefault(&o.PostsDir, "src/content/posts")
	setDefault(&o.ImagesDir, "public/notion-images")
	setDefault(&o.ImagesPublicPath, "/notion-images")
	if o.ImageWorkers <= 0 {
		o.ImageWorkers = 4
	}
	return nil
}

// RenderDefaultApplier handles renderer defaults.
type RenderDefaultApplier struct{}

func (a *RenderDefaultApplier) Domain() string { return "render" }

func (a *RenderDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Render.CTAColumnKeywords) == 0 {
		cfg.Render.CTAColumnKeywords = []string{"CTA", "최저가"}
	}
	return nil
}

// StateDefaultApplier handles state store defaults.
type StateDefaultApplier struct{}

func (a *StateDefaultApplier) Domain() string { return "state" }

func (a *StateDefaultApplier) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.State.Path, ".notionsync/state.db")
	return nil
}

// PublishDefaultApplier handles git publishing defaults.
type PublishDefaultApplier struct{}

func (a *PublishDefaultApplier) Domain() string { return "publish" }

func (a *PublishDefaultApplier) ApplyDefaults(cfg *Config) error {
	g := &cfg.Publish.Git
	setDefault(&g.RepoDir, ".")
	setDefault(&g.AuthorName, "notionsync")
	setDefault(&g.AuthorEmail, "notionsync@localhost")
	setDefault(&g.Remote, "origin")
	if g.Token == "" {
		g.Token = os.Getenv("NOTIONSYNC_GIT_TOKEN")
	}
	return nil
}

// EventsDefaultApplier handles NATS defaults.
type EventsDefaultApplier struct{}

func (a *EventsDefaultApplier) Domain() string { return "events" }

func (a *EventsDefaultApplier) ApplyDefaults(cfg *Config) error {
	n := &cfg.Events.NATS
	setDefault(&n.URL, "nats://127.0.0.1:4222")
	setDefault(&n.Subject, "notionsync.pages")
	setDefault(&n.Stream, "NOTIONSYNC")
	return nil
}

// DaemonDefaultApplier handles daemon defaults.
type DaemonDefaultApplier struct{}

func (a *DaemonDefaultApplier) Domain() string { return "daemon" }

func (a *DaemonDefaultApplier) ApplyDefaults(cfg *Config) error {
	d := &cfg.Daemon
	setDefault(&d.HTTP.Addr, ":8090")
	setDefault(&d.Schedule, "0 0,12 * * *")
	setDefault(&d.Webhook.Path, "/webhook")
	return nil
}

// MonitoringDefaultApplier handles monitoring defaults.
type MonitoringDefaultApplier struct{}

func (a *MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (a *MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	m := &cfg.Monitoring
	setDefault(&m.Metrics.Path, "/metrics")
	setDefault(&m.Health.Path, "/healthz")
	if m.Logging.Level == "" {
		m.Logging.Level = LogLevelInfo
	}
	if m.Logging.Format == "" {
		m.Logging.Format = LogFormatText
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
