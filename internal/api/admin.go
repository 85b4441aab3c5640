package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vocabadmin/internal/vocab"
)

// Backend admin endpoints.
const (
	CategoriesPath = "/v1/admin/categories"
	UsersPath      = "/v1/admin/Users"
)

// CategoryPath returns the detail path for category id.
func CategoryPath(id vocab.ID) string {
	return CategoriesPath + "/" + url.PathEscape(id.String())
}

// Categories lists all categories. The backend wraps them as {"data": [...]};
// a missing or malformed data field yields an empty list rather than an error.
func (c *Client) Categories(ctx context.Context) ([]vocab.Category, error) {
	raw, err := c.Request(ctx, http.MethodGet, CategoriesPath, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[vocab.Category](c, ctx, gjson.GetBytes(raw, "data")), nil
}

// Category fetches one category with its words. The backend answers
// {"succeeded": bool, "data": {..., "words": [...]}}. An explicit
// succeeded=false is a *RequestError; a missing or malformed words field
// yields an empty word list.
func (c *Client) Category(ctx context.Context, id vocab.ID) (*vocab.CategoryDetail, error) {
	path := CategoryPath(id)
	raw, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	if ok := gjson.GetBytes(raw, "succeeded"); ok.Exists() && !ok.Bool() {
		return nil, &RequestError{Method: http.MethodGet, Path: path, StatusCode: status, Err: ErrNotSucceeded}
	}

	data := gjson.GetBytes(raw, "data")
	detail := &vocab.CategoryDetail{
		ID:   id,
		Name: data.Get("name").String(),
	}
	if fetched := data.Get("id"); fetched.Exists() && fetched.String() != "" {
		detail.ID = vocab.ID(fetched.String())
	}
	detail.Words = decodeList[vocab.Word](c, ctx, data.Get("words"))
	return detail, nil
}

// InviteUser asks the backend to invite a new console user.
func (c *Client) InviteUser(ctx context.Context, req vocab.InviteRequest) error {
	_, err := c.Request(ctx, http.MethodPost, UsersPath, req)
	return err
}

// decodeList decodes a JSON array, returning an empty (non-nil) slice when the
// value is absent, not an array, or does not decode.
func decodeList[T any](c *Client, ctx context.Context, res gjson.Result) []T {
	items := []T{}
	if !res.IsArray() {
		if res.Exists() {
			c.logger.Warn(ctx, "expected a list in backend response", zap.String("type", res.Type.String()))
		}
		return items
	}
	if err := json.Unmarshal([]byte(res.Raw), &items); err != nil {
		c.logger.Warn(ctx, "malformed list in backend response", zap.Error(err))
		return []T{}
	}
	return items
}
