package emporia

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Friend list endpoints bind the paged query under a `PagedQuery.` prefix.

// Friends retrieves one page of the current user's friends.
func (c *Client) Friends(ctx context.Context, token string, query PagedQuery) (*PagedResult[Friend], error) {
	query.Prefixed = true
	rel := &url.URL{Path: "/v1/friends", RawQuery: query.Values().Encode()}
	var page PagedResult[Friend]
	if err := c.get(ctx, rel, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReceivedFriendRequests retrieves one page of pending requests sent to the
// current user.
func (c *Client) ReceivedFriendRequests(ctx context.Context, token string, query PagedQuery) (*PagedResult[FriendRequest], error) {
	query.Prefixed = true
	rel := &url.URL{Path: "/v1/friends/requests/received", RawQuery: query.Values().Encode()}
	var page PagedResult[FriendRequest]
	if err := c.get(ctx, rel, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SentFriendRequests retrieves one page of requests the current user has sent.
func (c *Client) SentFriendRequests(ctx context.Context, token string, query PagedQuery) (*PagedResult[FriendRequest], error) {
	query.Prefixed = true
	rel := &url.URL{Path: "/v1/friends/requests/sent", RawQuery: query.Values().Encode()}
	var page PagedResult[FriendRequest]
	if err := c.get(ctx, rel, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SendFriendRequest asks another user for friendship.
func (c *Client) SendFriendRequest(ctx context.Context, token string, receiverID uuid.UUID) error {
	rel := &url.URL{Path: "/v1/friends/requests"}
	body := struct {
		ReceiverID uuid.UUID `json:"receiverId"`
	}{ReceiverID: receiverID}
	return c.post(ctx, rel, token, body, nil)
}

// AcceptFriendRequest accepts a received request.
func (c *Client) AcceptFriendRequest(ctx context.Context, token string, requestID uuid.UUID) error {
	rel := &url.URL{Path: "/v1/friends/requests/" + requestID.String() + "/accept"}
	return c.post(ctx, rel, token, nil, nil)
}

// DeclineFriendRequest declines a received request.
func (c *Client) DeclineFriendRequest(ctx context.Context, token string, requestID uuid.UUID) error {
	rel := &url.URL{Path: "/v1/friends/requests/" + requestID.String() + "/decline"}
	return c.post(ctx, rel, token, nil, nil)
}

// CancelFriendRequest withdraws a request the current user sent.
func (c *Client) CancelFriendRequest(ctx context.Context, token string, requestID uuid.UUID) error {
	rel := &url.URL{Path: "/v1/friends/requests/" + requestID.String()}
	return c.do(ctx, http.MethodDelete, rel, token, nil, nil)
}

// RemoveFriend ends a friendship.
func (c *Client) RemoveFriend(ctx context.Context, token string, userID uuid.UUID) error {
	rel := &url.URL{Path: "/v1/friends/" + userID.String()}
	return c.do(ctx, http.MethodDelete, rel, token, nil, nil)
}
