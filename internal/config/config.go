package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

// CurrentVersion is the only configuration file version this build understands.
const CurrentVersion = "1.0"

// DefaultPath is used when --config is not given.
const DefaultPath = "notionsync.yaml"

// Config represents the notionsync configuration file.
type Config struct {
	Version    string           `yaml:"version"`
	Notion     NotionConfig     `yaml:"notion"`
	Retry      RetryConfig      `yaml:"retry"`
	Output     OutputConfig     `yaml:"output"`
	Render     RenderConfig     `yaml:"render"`
	State      StateConfig      `yaml:"state"`
	Publish    PublishConfig    `yaml:"publish"`
	Events     EventsConfig     `yaml:"events"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// NotionConfig holds API access and database conventions.
type NotionConfig struct {
	Token              string `yaml:"token"`
	DatabaseID         string `yaml:"database_id"`
	APIURL             string `yaml:"api_url"`
	APIVersion         string `yaml:"api_version"`
	Timeout            string `yaml:"timeout"`
	PageSize           int    `yaml:"page_size"`
	PublishedStatus    string `yaml:"published_status"`
	DeletedStatus      string `yaml:"deleted_status"`
	DefaultContentType string `yaml:"default_content_type"`
}

// TimeoutDuration returns the parsed request timeout, 30s when unset or invalid.
func (n NotionConfig) TimeoutDuration() time.Duration {
	return parseDuration(n.Timeout, 30*time.Second)
}

// RetryConfig controls retries of transient Notion and download failures.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay string           `yaml:"initial_delay"`
	MaxDelay     string           `yaml:"max_delay"`
	MaxRetries   int              `yaml:"max_retries"`
}

func (r RetryConfig) InitialDelayDuration() time.Duration {
	return parseDuration(r.InitialDelay, time.Second)
}

func (r RetryConfig) MaxDelayDuration() time.Duration {
	return parseDuration(r.MaxDelay, 30*time.Second)
}

// OutputConfig locates the generated posts and images.
type OutputConfig struct {
	PostsDir         string `yaml:"posts_dir"`
	ImagesDir        string `yaml:"images_dir"`
	ImagesPublicPath string `yaml:"images_public_path"`
	ImageWorkers     int    `yaml:"image_workers"`
}

// RenderConfig tunes the HTML renderer.
type RenderConfig struct {
	// CTAColumnKeywords select the comparison table column rendered as buttons.
	CTAColumnKeywords []string `yaml:"cta_column_keywords"`
}

// StateConfig locates the SQLite state database.
type StateConfig struct {
	Path string `yaml:"path"`
}

// PublishConfig groups post-run publishing targets.
type PublishConfig struct {
	Git GitPublishConfig `yaml:"git"`
}

// GitPublishConfig commits (and optionally pushes) written posts.
type GitPublishConfig struct {
	Enabled     bool   `yaml:"enabled"`
	RepoDir     string `yaml:"repo_dir"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
	Push        bool   `yaml:"push"`
	Remote      string `yaml:"remote"`

	// Token authenticates HTTPS pushes; empty uses the remote's own credentials.
	Token string `yaml:"token,omitempty"`
}

// EventsConfig groups event publishing targets.
type EventsConfig struct {
	NATS NATSConfig `yaml:"nats"`
}

// NATSConfig configures JetStream page events.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Stream  string `yaml:"stream"`
}

// DaemonConfig represents daemon-specific configuration.
type DaemonConfig struct {
	HTTP        HTTPConfig    `yaml:"http"`
	Schedule    string        `yaml:"schedule"`
	Webhook     WebhookConfig `yaml:"webhook"`
	WatchConfig bool          `yaml:"watch_config"`
}

// HTTPConfig represents the daemon HTTP listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// WebhookConfig represents the webhook endpoint.
type WebhookConfig struct {
	Path   string `yaml:"path"`
	Secret string `yaml:"secret"`

	// AllowUnauthenticated lets the daemon start without a secret.
	AllowUnauthenticated bool `yaml:"allow_unauthenticated,omitempty"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MonitoringHealth struct {
	Path string `yaml:"path"`
}

type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			WithContext("path", configPath).
			Fatal().
			Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).
			WithContext("path", configPath).
			Build()
	}

	return finalize(&cfg)
}

// LoadOrDefault loads configPath when it exists, otherwise builds the default
// configuration from the environment alone.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}
	cfg := &Config{Version: CurrentVersion}
	return finalize(cfg)
}

func finalize(cfg *Config) (*Config, error) {
	for _, w := range NormalizeConfig(cfg) {
		slog.Warn("config normalization", "warning", w)
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() Config {
	cfg := Config{
		Version: CurrentVersion,
		Notion: NotionConfig{
			Token:      "${NOTION_TOKEN}",
			DatabaseID: "${NOTION_DATABASE_ID}",
		},
		Daemon: DaemonConfig{
			Webhook:     WebhookConfig{Secret: "${NOTIONSYNC_WEBHOOK_SECRET}"},
			WatchConfig: true,
		},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true},
		},
	}
	_ = applyDefaults(&cfg)
	return cfg
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
