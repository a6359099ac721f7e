package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CrafterItem is one row of the crafter items API.
type CrafterItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemsClient reads the crafter's item list using the forum session cookies
// instead of a browser.
type ItemsClient struct {
	urls    URLs
	creds   Credentials
	timeout time.Duration
}

var newHTTPClient = func(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func NewItemsClient(urls URLs, creds Credentials, timeout time.Duration) *ItemsClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ItemsClient{urls: urls, creds: creds, timeout: timeout}
}

type itemsResponse struct {
	Data []map[string]json.RawMessage `json:"data"`
}

func (c *ItemsClient) List(ctx context.Context) ([]CrafterItem, error) {
	form := url.Values{}
	form.Set("draw", "1")
	form.Set("start", "0")
	form.Set("length", "-1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urls.APICrafterItems, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newError(KindItemsAPIFailed, "build items request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "bb_userid", Value: c.creds.UserID})
	req.AddCookie(&http.Cookie{Name: "bb_password", Value: c.creds.PasswordMD5})

	resp, err := newHTTPClient(c.timeout).Do(req)
	if err != nil {
		return nil, newError(KindItemsAPIFailed, "request crafter items", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newError(KindItemsAPIFailed, fmt.Sprintf("unexpected status %s from %s", resp.Status, c.urls.APICrafterItems), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, newError(KindItemsAPIFailed, "read crafter items", err)
	}

	var parsed itemsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, newError(KindItemsAPIFailed, "decode crafter items (are FG_USER_ID and FG_USER_PASS correct?)", err)
	}

	items := make([]CrafterItem, 0, len(parsed.Data))
	for _, row := range parsed.Data {
		id := firstField(row, "item_id", "id")
		if id == "" {
			continue
		}
		items = append(items, CrafterItem{ID: id, Name: firstField(row, "name", "item_name", "title")})
	}
	return items, nil
}

// firstField returns the first present key as a string; numbers keep their
// literal form.
func firstField(row map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := row[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}
