package api

import (
	"context"
	"net/url"
	"strconv"
)

// Server-side bounds for /api/history.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// History fetches page (1-based) of the signed-in user's predictions.
// Out-of-range arguments are clamped to what the backend accepts.
func (c *Client) History(ctx context.Context, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out HistoryPage
	if err := c.getJSON(ctx, "history", "/api/history?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if out.Page == 0 {
		out.Page = page
	}
	if out.Limit == 0 {
		out.Limit = limit
	}
	return &out, nil
}
