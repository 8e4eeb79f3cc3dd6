package emporia

import (
	"context"
	"net/url"
)

// GameInfo retrieves the current user's display identity and balance.
func (c *Client) GameInfo(ctx context.Context, token string) (*GameInfo, error) {
	rel := &url.URL{Path: "/v1/users/me/game-info"}
	var info GameInfo
	if err := c.get(ctx, rel, token, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SearchUsers finds users the current user could befriend, matching the
// search phrase.
func (c *Client) SearchUsers(ctx context.Context, token string, query PagedQuery) (*PagedResult[UserSearchResult], error) {
	query.Prefixed = true
	rel := &url.URL{Path: "/v1/users/search", RawQuery: query.Values().Encode()}
	var page PagedResult[UserSearchResult]
	if err := c.get(ctx, rel, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
