package notion

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

type queryRequest struct {
	Filter      any        `json:"filter,omitempty"`
	Sorts       []sortSpec `json:"sorts,omitempty"`
	StartCursor string     `json:"start_cursor,omitempty"`
	PageSize    int        `json:"page_size,omitempty"`
}

type sortSpec struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type pageList struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type blockList struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

func (c *Client) statusFilter() map[string]any {
	return map[string]any{
		"property": "Status",
		"status":   map[string]string{"equals": c.publishedStatus},
	}
}

// QueryPublished returns every published page, newest Date first.
func (c *Client) QueryPublished(ctx context.Context) ([]Page, error) {
	return c.query(ctx, queryRequest{
		Filter: c.statusFilter(),
		Sorts:  []sortSpec{{Property: "Date", Direction: "descending"}},
	})
}

// QueryDue returns published pages whose Date is strictly before now, oldest first.
func (c *Client) QueryDue(ctx context.Context, now time.Time) ([]Page, error) {
	return c.query(ctx, queryRequest{
		Filter: map[string]any{
			"and": []any{
				c.statusFilter(),
				map[string]any{
					"property": "Date",
					"date":     map[string]string{"before": now.UTC().Format(time.RFC3339)},
				},
			},
		},
		Sorts: []sortSpec{{Property: "Date", Direction: "ascending"}},
	})
}

// QueryAll returns every page of the database regardless of status.
func (c *Client) QueryAll(ctx context.Context) ([]Page, error) {
	return c.query(ctx, queryRequest{})
}

func (c *Client) query(ctx context.Context, q queryRequest) ([]Page, error) {
	q.PageSize = c.pageSize
	endpoint := "databases/" + c.databaseID + "/query"

	var pages []Page
	for {
		var resp pageList
		if err := c.do(ctx, "POST", endpoint, q, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		q.StartCursor = resp.NextCursor
	}
}

// RetrievePage fetches a single page by id.
func (c *Client) RetrievePage(ctx context.Context, id string) (Page, error) {
	var p Page
	err := c.do(ctx, "GET", "pages/"+url.PathEscape(id), nil, &p)
	return p, err
}

// FetchBlocks returns the page's block tree. Children of child pages and child
// databases are not fetched.
func (c *Client) FetchBlocks(ctx context.Context, pageID string) ([]content.Block, error) {
	raw, err := c.fetchChildren(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return ToContent(raw), nil
}

func (c *Client) fetchChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		q := url.Values{}
		if c.pageSize > 0 {
			q.Set("page_size", strconv.Itoa(c.pageSize))
		}
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		endpoint := "blocks/" + url.PathEscape(blockID) + "/children"
		if len(q) > 0 {
			endpoint += "?" + q.Encode()
		}

		var resp blockList
		if err := c.do(ctx, "GET", endpoint, nil, &resp); err != nil {
			return nil, err
		}
		for _, b := range resp.Results {
			if b.HasChildren && b.Type != "child_page" && b.Type != "child_database" {
				children, err := c.fetchChildren(ctx, b.ID)
				if err != nil {
					return nil, err
				}
				b.Children = children
			}
			blocks = append(blocks, b)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return blocks, nil
		}
		cursor = resp.NextCursor
	}
}
