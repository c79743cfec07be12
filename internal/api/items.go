package api

import (
	"context"
	"net/http"

	"github.com/idilsaglam/qna/internal/model"
)

// Items fetches the full items collection, in server order.
func (c *Client) Items(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.doJSON(ctx, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
