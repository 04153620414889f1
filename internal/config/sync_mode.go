package config

import "git.home.luguber.info/inful/notionsync/internal/foundation/normalization"

// SyncMode selects which pages a sync run considers.
type SyncMode string

const (
	// SyncModeScheduled publishes the oldest due page.
	SyncModeScheduled SyncMode = "scheduled"
	// SyncModeWebhook handles a single page status change.
	SyncModeWebhook SyncMode = "webhook"
	// SyncModeManual mirrors every published page and prunes the rest.
	SyncModeManual SyncMode = "manual"
)

var syncModeNormalizer = normalization.NewNormalizer(map[string]SyncMode{
	"scheduled": SyncModeScheduled,
	"webhook":   SyncModeWebhook,
	"manual":    SyncModeManual,
}, SyncModeManual)

// ParseSyncMode accepts any casing; empty input means manual.
func ParseSyncMode(raw string) (SyncMode, error) {
	if raw == "" {
		return SyncModeManual, nil
	}
	return syncModeNormalizer.Parse(raw)
}
