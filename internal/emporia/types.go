package emporia

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SortDirection matches the API's sort direction enum.
type SortDirection string

const (
	Ascending  SortDirection = "Ascending"
	Descending SortDirection = "Descending"
)

// PagedQuery is the filter/sort/paging request shape shared by every list
// endpoint. Zero-value string fields mean "absent" on the wire.
type PagedQuery struct {
	SearchPhrase  string
	SortBy        string
	SortDirection SortDirection
	PageNumber    int
	PageSize      int

	// Prefixed selects the `PagedQuery.field` parameter naming some endpoints
	// bind with instead of bare field names.
	Prefixed bool
}

// DefaultPagedQuery returns the baseline query used by list views.
func DefaultPagedQuery(sortBy string) PagedQuery {
	return PagedQuery{
		SortBy:        sortBy,
		SortDirection: Ascending,
		PageNumber:    1,
		PageSize:      10,
	}
}

// WithSearch returns a copy with the search phrase replaced and the page
// reset to 1, so a shrunken result set cannot leave the view on an
// out-of-range page.
func (q PagedQuery) WithSearch(phrase string) PagedQuery {
	q.SearchPhrase = phrase
	q.PageNumber = 1
	return q
}

// WithSortBy returns a copy sorted by the given field, reset to page 1.
func (q PagedQuery) WithSortBy(field string) PagedQuery {
	q.SortBy = field
	q.PageNumber = 1
	return q
}

// WithSortDirection returns a copy with the direction replaced. Direction
// changes keep the current page.
func (q PagedQuery) WithSortDirection(dir SortDirection) PagedQuery {
	q.SortDirection = dir
	return q
}

// WithPageSize returns a copy with the page size replaced, reset to page 1.
func (q PagedQuery) WithPageSize(size int) PagedQuery {
	q.PageSize = size
	q.PageNumber = 1
	return q
}

// WithPage returns a copy on the given page.
func (q PagedQuery) WithPage(page int) PagedQuery {
	if page < 1 {
		page = 1
	}
	q.PageNumber = page
	return q
}

// Values encodes the query as URL parameters.
func (q PagedQuery) Values() url.Values {
	name := func(field string) string {
		if q.Prefixed {
			return "PagedQuery." + field
		}
		return field
	}

	values := url.Values{}
	if q.SearchPhrase != "" {
		values.Set(name("searchPhrase"), q.SearchPhrase)
	}
	if q.SortBy != "" {
		values.Set(name("sortBy"), q.SortBy)
	}
	if q.SortDirection != "" {
		values.Set(name("sortDirection"), string(q.SortDirection))
	}
	if q.PageNumber > 0 {
		values.Set(name("pageNumber"), strconv.Itoa(q.PageNumber))
	}
	if q.PageSize > 0 {
		values.Set(name("pageSize"), strconv.Itoa(q.PageSize))
	}
	return values
}

// PagedResult is the server's paged response envelope. ItemsFrom/ItemsTo are
// 1-based inclusive display bounds for the current page.
type PagedResult[T any] struct {
	Items           []T `json:"items"`
	TotalPages      int `json:"totalPages"`
	TotalItemsCount int `json:"totalItemsCount"`
	ItemsFrom       int `json:"itemsFrom"`
	ItemsTo         int `json:"itemsTo"`
}

// Paginated reports whether pagination controls should be shown at all.
func (r PagedResult[T]) Paginated() bool {
	return r.TotalPages > 1
}

// Identity DTOs.

type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenBundle is the login/refresh response. RefreshToken is null for
// browser/terminal clients; the credential travels in an HTTP-only cookie.
type TokenBundle struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

type ConfirmEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// User DTOs.

type GameInfo struct {
	ID                uuid.UUID `json:"id"`
	UserName          string    `json:"userName"`
	Balance           int64     `json:"balance"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
}

type UserSearchResult struct {
	ID                uuid.UUID `json:"id"`
	UserName          string    `json:"userName"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
}

// Friend DTOs.

type Friend struct {
	UserID            uuid.UUID `json:"userId"`
	UserName          string    `json:"userName"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	FriendsSince      time.Time `json:"friendsSince"`
}

type FriendRequest struct {
	ID uuid.UUID `json:"id"`

	RequesterID                uuid.UUID `json:"requesterId"`
	RequesterUserName          string    `json:"requesterUserName"`
	RequesterProfilePictureURL string    `json:"requesterProfilePictureUrl,omitempty"`

	ReceiverID                uuid.UUID `json:"receiverId"`
	ReceiverUserName          string    `json:"receiverUserName"`
	ReceiverProfilePictureURL string    `json:"receiverProfilePictureUrl,omitempty"`

	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// Item and offer DTOs.

type ItemType string

const (
	Consumable       ItemType = "Consumable"
	EquippableOnHead ItemType = "EquippableOnHead"
	EquippableOnBody ItemType = "EquippableOnBody"
)

// Display returns the human-readable item type label.
func (t ItemType) Display() string {
	switch t {
	case Consumable:
		return "Consumable"
	case EquippableOnHead:
		return "Equippable on Head"
	case EquippableOnBody:
		return "Equippable on Body"
	default:
		return string(t)
	}
}

type Item struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Type         ItemType `json:"type"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
}

type CreateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UserItem struct {
	ID               uuid.UUID  `json:"id"`
	Item             Item       `json:"item"`
	ObtainedAt       time.Time  `json:"obtainedAt"`
	ActiveOfferID    *uuid.UUID `json:"activeOfferId,omitempty"`
	ActiveOfferPrice *int64     `json:"activeOfferPrice,omitempty"`
}

type Offer struct {
	ID       uuid.UUID `json:"id"`
	UserItem UserItem  `json:"userItem"`
	Price    int64     `json:"price"`

	SellerID       uuid.UUID `json:"sellerId"`
	SellerUsername string    `json:"sellerUsername"`
	PublishedAt    time.Time `json:"publishedAt"`

	BuyerID       *uuid.UUID `json:"buyerId,omitempty"`
	BuyerUsername string     `json:"buyerUsername,omitempty"`
	BoughtAt      *time.Time `json:"boughtAt,omitempty"`
}

type CreateOfferRequest struct {
	UserItemID uuid.UUID `json:"userItemId"`
	Price      int64     `json:"price"`
}
