package emporia

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// Items retrieves the full item catalog. This endpoint is not paged.
func (c *Client) Items(ctx context.Context, token string) ([]Item, error) {
	rel := &url.URL{Path: "/v1/items"}
	var items []Item
	if err := c.get(ctx, rel, token, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem adds a catalog item.
func (c *Client) CreateItem(ctx context.Context, token string, req CreateItemRequest) (*Item, error) {
	rel := &url.URL{Path: "/v1/items"}
	var item Item
	if err := c.post(ctx, rel, token, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem replaces a catalog item's name and description.
func (c *Client) UpdateItem(ctx context.Context, token string, itemID int64, req CreateItemRequest) (*Item, error) {
	rel := &url.URL{Path: "/v1/items/" + strconv.FormatInt(itemID, 10)}
	var item Item
	if err := c.do(ctx, http.MethodPut, rel, token, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes a catalog item.
func (c *Client) DeleteItem(ctx context.Context, token string, itemID int64) error {
	rel := &url.URL{Path: "/v1/items/" + strconv.FormatInt(itemID, 10)}
	return c.do(ctx, http.MethodDelete, rel, token, nil, nil)
}

// MyItems retrieves the current user's inventory. Not paged.
func (c *Client) MyItems(ctx context.Context, token string) ([]UserItem, error) {
	rel := &url.URL{Path: "/v1/users/me/items"}
	var items []UserItem
	if err := c.get(ctx, rel, token, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Offers retrieves one page of marketplace offers. showActive selects between
// open offers and completed sales.
func (c *Client) Offers(ctx context.Context, token string, query PagedQuery, showActive bool) (*PagedResult[Offer], error) {
	values := query.Values()
	values.Set("showActive", strconv.FormatBool(showActive))
	rel := &url.URL{Path: "/v1/users/offers", RawQuery: values.Encode()}
	var page PagedResult[Offer]
	if err := c.get(ctx, rel, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateOffer lists one of the current user's items for sale.
func (c *Client) CreateOffer(ctx context.Context, token string, req CreateOfferRequest) error {
	rel := &url.URL{Path: "/v1/users/offers"}
	return c.post(ctx, rel, token, req, nil)
}

// PurchaseOffer buys an open offer. Balance and ownership checks are
// server-side; failures come back as Problem titles.
func (c *Client) PurchaseOffer(ctx context.Context, token string, offerID uuid.UUID) error {
	rel := &url.URL{Path: "/v1/users/offers/" + offerID.String() + "/purchase"}
	return c.post(ctx, rel, token, nil, nil)
}
