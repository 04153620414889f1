package state

import "time"

// CacheEntry remembers what was last written for a page.
type CacheEntry struct {
	NotionID       string
	LastEditedTime string
	Fingerprint    string
	SyncedAt       time.Time
}

// PublishRecord tracks a page that currently has a post file.
type PublishRecord struct {
	NotionID    string
	Slug        string
	Category    string
	FilePath    string
	PublishedAt time.Time
}

// Run summarises one sync run.
type Run struct {
	ID         string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Written    int
	Skipped    int
	Deleted    int
	Failed     int
	Error      string
}
