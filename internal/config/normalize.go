package config

import (
	"fmt"
	"strings"
)

// NormalizeConfig case-folds enumerations and trims obvious whitespace mistakes.
// It returns human readable warnings for values it had to change.
func NormalizeConfig(cfg *Config) []string {
	var warnings []string

	if raw := string(cfg.Retry.Backoff); raw != "" {
		if mode := NormalizeRetryBackoff(raw); mode != "" {
			cfg.Retry.Backoff = mode
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown retry.backoff %q, using default", raw))
			cfg.Retry.Backoff = ""
		}
	}

	if raw := string(cfg.Monitoring.Logging.Level); raw != "" {
		if !logLevelNormalizer.Valid(raw) {
			warnings = append(warnings, fmt.Sprintf("unknown monitoring.logging.level %q, using info", raw))
		}
		cfg.Monitoring.Logging.Level = NormalizeLogLevel(raw)
	}
	if raw := string(cfg.Monitoring.Logging.Format); raw != "" {
		cfg.Monitoring.Logging.Format = NormalizeLogFormat(raw)
	}

	cfg.Notion.DatabaseID = strings.TrimSpace(cfg.Notion.DatabaseID)
	cfg.Notion.Token = strings.TrimSpace(cfg.Notion.Token)

	keywords := cfg.Render.CTAColumnKeywords[:0]
	for _, k := range cfg.Render.CTAColumnKeywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	cfg.Render.CTAColumnKeywords = keywords

	return warnings
}
