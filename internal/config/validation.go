package config

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

// ValidateConfig validates the complete configuration one domain at a time.
// The first failing domain is reported as a fatal config error.
func ValidateConfig(cfg *Config) error {
	cv := &configurationValidator{config: cfg}
	steps := []struct {
		domain string
		fn     func() error
	}{
		{"notion", cv.validateNotion},
		{"retry", cv.validateRetry},
		{"output", cv.validateOutput},
		{"render", cv.validateRender},
		{"state", cv.validateState},
		{"publish", cv.validatePublish},
		{"events", cv.validateEvents},
		{"daemon", cv.validateDaemon},
		{"monitoring", cv.validateMonitoring},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "configuration validation failed").
				WithContext("domain", step.domain).
				Fatal().
				Build()
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

var durationRule = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return validation.NewError("validation_duration", "must be a duration such as 30s or 1m")
	}
	if d <= 0 {
		return validation.NewError("validation_duration_positive", "must be positive")
	}
	return nil
})

var absolutePathRule = validation.By(func(value any) error {
	s, _ := value.(string)
	if s != "" && !strings.HasPrefix(s, "/") {
		return validation.NewError("validation_url_path", "must start with /")
	}
	return nil
})

func (cv *configurationValidator) validateNotion() error {
	n := &cv.config.Notion
	return validation.ValidateStruct(n,
		validation.Field(&n.Token, validation.Required.Error("is required (set notion.token or NOTION_TOKEN)")),
		validation.Field(&n.DatabaseID, validation.Required.Error("is required (set notion.database_id or NOTION_DATABASE_ID)")),
		validation.Field(&n.APIURL, validation.Required, is.URL),
		validation.Field(&n.APIVersion, validation.Required),
		validation.Field(&n.Timeout, durationRule),
		validation.Field(&n.PageSize, validation.Min(1), validation.Max(100)),
		validation.Field(&n.PublishedStatus, validation.Required),
		validation.Field(&n.DeletedStatus, validation.Required),
	)
}

func (cv *configurationValidator) validateRetry() error {
	r := &cv.config.Retry
	return validation.ValidateStruct(r,
		validation.Field(&r.Backoff, validation.In(RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential)),
		validation.Field(&r.InitialDelay, durationRule),
		validation.Field(&r.MaxDelay, durationRule),
		validation.Field(&r.MaxRetries, validation.Min(0), validation.Max(10)),
	)
}

func (cv *configurationValidator) validateOutput() error {
	o := &cv.config.Output
	return validation.ValidateStruct(o,
		validation.Field(&o.PostsDir, validation.Required),
		validation.Field(&o.ImagesDir, validation.Required),
		validation.Field(&o.ImagesPublicPath, validation.Required, absolutePathRule),
		validation.Field(&o.ImageWorkers, validation.Min(1), validation.Max(32)),
	)
}

func (cv *configurationValidator) validateRender() error {
	r := &cv.config.Render
	return validation.ValidateStruct(r,
		validation.Field(&r.CTAColumnKeywords, validation.Required, validation.Each(validation.Required)),
	)
}

func (cv *configurationValidator) validateState() error {
	s := &cv.config.State
	return validation.ValidateStruct(s, validation.Field(&s.Path, validation.Required))
}

func (cv *configurationValidator) validatePublish() error {
	g := &cv.config.Publish.Git
	return validation.ValidateStruct(g,
		validation.Field(&g.RepoDir, validation.When(g.Enabled, validation.Required)),
		validation.Field(&g.AuthorName, validation.When(g.Enabled, validation.Required)),
		validation.Field(&g.AuthorEmail, validation.When(g.Enabled, validation.Required)),
		validation.Field(&g.Remote, validation.When(g.Push, validation.Required)),
	)
}

func (cv *configurationValidator) validateEvents() error {
	n := &cv.config.Events.NATS
	return validation.ValidateStruct(n,
		validation.Field(&n.URL, validation.When(n.Enabled, validation.Required)),
		validation.Field(&n.Subject, validation.When(n.Enabled, validation.Required)),
	)
}

func (cv *configurationValidator) validateDaemon() error {
	d := &cv.config.Daemon
	return validation.ValidateStruct(d,
		validation.Field(&d.Schedule, validation.Required),
		validation.Field(&d.HTTP, validation.By(func(any) error {
			return validation.ValidateStruct(&d.HTTP, validation.Field(&d.HTTP.Addr, validation.Required))
		})),
		validation.Field(&d.Webhook, validation.By(func(any) error {
			return validation.ValidateStruct(&d.Webhook, validation.Field(&d.Webhook.Path, validation.Required, absolutePathRule))
		})),
	)
}

func (cv *configurationValidator) validateMonitoring() error {
	m := &cv.config.Monitoring
	return validation.ValidateStruct(m,
		validation.Field(&m.Metrics, validation.By(func(any) error {
			return validation.ValidateStruct(&m.Metrics, validation.Field(&m.Metrics.Path, absolutePathRule))
		})),
		validation.Field(&m.Health, validation.By(func(any) error {
			return validation.ValidateStruct(&m.Health, validation.Field(&m.Health.Path, absolutePathRule))
		})),
		validation.Field(&m.Logging, validation.By(func(any) error {
			l := &m.Logging
			return validation.ValidateStruct(l,
				validation.Field(&l.Level, validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)),
				validation.Field(&l.Format, validation.In(LogFormatJSON, LogFormatText)),
			)
		})),
	)
}
