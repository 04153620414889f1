package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "notionsync.pages.published", Subject("notionsync.pages", PagePublished))
	assert.Equal(t, "x.deleted", Subject("x", PageDeleted))
}

func TestEncodeSetsTimestamp(t *testing.T) {
	data, err := encode(Event{Type: PagePublished, RunID: "r1", Slug: "s"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "published", decoded["type"])
	assert.Equal(t, "s", decoded["slug"])
	assert.NotContains(t, decoded, "category")

	ts, err := time.Parse(time.RFC3339Nano, decoded["timestamp"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	require.NoError(t, p.Publish(context.Background(), Event{Type: RunCompleted}))
	require.NoError(t, p.Close())
}

func TestNewNATSUnreachable(t *testing.T) {
	_, err := NewNATS(context.Background(), config.NATSConfig{URL: "nats://127.0.0.1:1", Subject: "s", Stream: "S"})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryEvents, errors.GetCategory(err))
}
