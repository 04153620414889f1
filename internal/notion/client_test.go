package notion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/retry"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.NotionConfig{
		Token:           "secret",
		DatabaseID:      "db1",
		APIURL:          srv.URL + "/v1",
		APIVersion:      "2022-06-28",
		Timeout:         "5s",
		PageSize:        2,
		PublishedStatus: "Published",
	}, WithRetryPolicy(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)))
}

func TestQueryPublishedPaginates(t *testing.T) {
	var bodies []map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/databases/db1/query", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		bodies = append(bodies, body)

		if body["start_cursor"] == nil {
			_, _ = w.Write([]byte(`{"results":[{"id":"p1"},{"id":"p2"}],"has_more":true,"next_cursor":"c2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":"p3"}],"has_more":false,"next_cursor":null}`))
	})

	pages, err := client.QueryPublished(context.Background())
	require.NoError(t, err)

	require.Len(t, pages, 3)
	assert.Equal(t, "p3", pages[2].ID)
	require.Len(t, bodies, 2)
	assert.Equal(t, "c2", bodies[1]["start_cursor"])
	assert.InDelta(t, 2, bodies[0]["page_size"], 0)
	assert.Equal(t, map[string]any{"property": "Status", "status": map[string]any{"equals": "Published"}}, bodies[0]["filter"])
	assert.Equal(t, []any{map[string]any{"property": "Date", "direction": "descending"}}, bodies[0]["sorts"])
}

func TestQueryDueFilter(t *testing.T) {
	var body map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(`{"results":[],"has_more":false}`))
	})

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*3600))
	_, err := client.QueryDue(context.Background(), now)
	require.NoError(t, err)

	and := body["filter"].(map[string]any)["and"].([]any)
	require.Len(t, and, 2)
	assert.Equal(t, map[string]any{"property": "Date", "date": map[string]any{"before": "2025-03-01T00:00:00Z"}}, and[1])
	assert.Equal(t, []any{map[string]any{"property": "Date", "direction": "ascending"}}, body["sorts"])
}

func TestFetchBlocksRecursesAndSkipsChildPages(t *testing.T) {
	var calls []string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path+"?"+r.URL.RawQuery)
		switch r.URL.Path {
		case "/v1/blocks/page/children":
			if r.URL.Query().Get("start_cursor") == "" {
				_, _ = w.Write([]byte(`{"results":[
					{"id":"b1","type":"bulleted_list_item","has_children":true,"bulleted_list_item":{"rich_text":[{"plain_text":"Q"}]}},
					{"id":"b2","type":"child_page","has_children":true}
				],"has_more":true,"next_cursor":"n1"}`))
				return
			}
			_, _ = w.Write([]byte(`{"results":[{"id":"b3","type":"divider","divider":{}}],"has_more":false}`))
		case "/v1/blocks/b1/children":
			_, _ = w.Write([]byte(`{"results":[{"id":"c1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"A"}]}}],"has_more":false}`))
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	blocks, err := client.FetchBlocks(context.Background(), "page")
	require.NoError(t, err)

	require.Len(t, blocks, 3)
	assert.Equal(t, content.BulletedItem{Text: content.Plain("Q")}, blocks[0].Payload)
	require.Len(t, blocks[0].Children, 1)
	assert.Equal(t, "A", blocks[0].Children[0].PlainText())
	assert.Equal(t, content.Kind("child_page"), blocks[1].Kind())
	assert.Empty(t, blocks[1].Children)
	assert.Equal(t, content.KindDivider, blocks[2].Kind())
	assert.Len(t, calls, 3)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		category errors.ErrorCategory
		attempts int32
	}{
		{"unauthorized", http.StatusUnauthorized, errors.CategoryAuth, 1},
		{"not found", http.StatusNotFound, errors.CategoryNotFound, 1},
		{"bad request", http.StatusBadRequest, errors.CategoryNotion, 1},
		{"rate limited", http.StatusTooManyRequests, errors.CategoryNotion, 3},
		{"server error", http.StatusBadGateway, errors.CategoryNotion, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"object":"error"}`))
			})

			_, err := client.RetrievePage(context.Background(), "abc")
			require.Error(t, err)

			assert.Equal(t, tt.category, errors.GetCategory(err))
			assert.Equal(t, tt.attempts, attempts.Load())
		})
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/v1/pages/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"abc","last_edited_time":"2025-01-01T00:00:00.000Z"}`))
	})

	page, err := client.RetrievePage(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", page.LastEditedTime)
}
