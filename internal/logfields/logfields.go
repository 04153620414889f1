package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPageID     = "page_id"
	KeyTitle      = "title"
	KeySlug       = "slug"
	KeyCategory   = "category"
	KeyStatus     = "status"
	KeyMode       = "mode"
	KeyRunID      = "run_id"
	KeySection    = "section"
	KeyBlockType  = "block_type"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyMethod     = "method"
	KeyRemoteAddr = "remote_addr"
	KeySchedule   = "schedule_name"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PageID(id string) slog.Attr       { return slog.String(KeyPageID, id) }
func Title(t string) slog.Attr         { return slog.String(KeyTitle, t) }
func Slug(s string) slog.Attr          { return slog.String(KeySlug, s) }
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func Status(s string) slog.Attr        { return slog.String(KeyStatus, s) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Section(s string) slog.Attr       { return slog.String(KeySection, s) }
func BlockType(t string) slog.Attr     { return slog.String(KeyBlockType, t) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func RemoteAddr(a string) slog.Attr    { return slog.String(KeyRemoteAddr, a) }
func ScheduleName(n string) slog.Attr  { return slog.String(KeySchedule, n) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
