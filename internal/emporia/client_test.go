package emporia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	_, err := parseBaseURL("")
	if err == nil {
		t.Fatal("parseBaseURL(\"\") returned nil error, want failure")
	}

	u, err := parseBaseURL("api.emporia.example.com")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}

	u, err = parseBaseURL("https://example.com/base/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/base" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_AttachesAuthAndClientHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotClientType, gotUserAgent string
	var gotIdentityClientType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/users/me/game-info":
			gotAuth = r.Header.Get("Authorization")
			gotClientType = r.Header.Get("X-Client-Type")
			gotUserAgent = r.Header.Get("User-Agent")
			_ = json.NewEncoder(w).Encode(GameInfo{UserName: "merchant", Balance: 250})
		case "/v1/identity/login":
			gotIdentityClientType = r.Header.Get("X-Client-Type")
			_ = json.NewEncoder(w).Encode(TokenBundle{AccessToken: "tok"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	info, err := c.GameInfo(ctx, "token-123")
	if err != nil {
		t.Fatalf("GameInfo returned error: %v", err)
	}
	if info.UserName != "merchant" || info.Balance != 250 {
		t.Fatalf("GameInfo payload = %#v, want merchant balance=250", info)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("Authorization = %q, want Bearer token-123", gotAuth)
	}
	if gotClientType != "" {
		t.Fatalf("X-Client-Type on non-identity call = %q, want empty", gotClientType)
	}
	if !strings.HasPrefix(gotUserAgent, "peddler/") {
		t.Fatalf("User-Agent = %q, want peddler/*", gotUserAgent)
	}

	if _, err := c.Login(ctx, LoginRequest{Username: "merchant", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if gotIdentityClientType != clientType {
		t.Fatalf("X-Client-Type on identity call = %q, want %q", gotIdentityClientType, clientType)
	}
}

func TestClient_EncodesPagedQueries(t *testing.T) {
	t.Parallel()

	var gotFriends url.Values
	var gotOffers url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/friends":
			gotFriends = r.URL.Query()
			_ = json.NewEncoder(w).Encode(PagedResult[Friend]{Items: []Friend{}, TotalPages: 1})
		case "/v1/users/offers":
			gotOffers = r.URL.Query()
			_ = json.NewEncoder(w).Encode(PagedResult[Offer]{Items: []Offer{}, TotalPages: 1})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	query := DefaultPagedQuery("UserName").WithSearch("bob").WithPage(3)
	if _, err := c.Friends(ctx, "tok", query); err != nil {
		t.Fatalf("Friends returned error: %v", err)
	}
	// Friend endpoints bind the query with the PagedQuery. prefix.
	if gotFriends.Get("PagedQuery.searchPhrase") != "bob" ||
		gotFriends.Get("PagedQuery.sortBy") != "UserName" ||
		gotFriends.Get("PagedQuery.sortDirection") != string(Ascending) ||
		gotFriends.Get("PagedQuery.pageNumber") != "3" ||
		gotFriends.Get("PagedQuery.pageSize") != "10" {
		t.Fatalf("Friends query = %v, want prefixed params", gotFriends)
	}

	if _, err := c.Offers(ctx, "tok", DefaultPagedQuery("PublishedAt"), true); err != nil {
		t.Fatalf("Offers returned error: %v", err)
	}
	if gotOffers.Get("searchPhrase") != "" ||
		gotOffers.Get("sortBy") != "PublishedAt" ||
		gotOffers.Get("pageNumber") != "1" ||
		gotOffers.Get("showActive") != "true" {
		t.Fatalf("Offers query = %v, want unprefixed params with showActive", gotOffers)
	}
}

func TestClient_DecodesProblemResponses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/identity/register":
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"title":"Validation failed","errors":{"UserName":["Too short","Already taken"]}}`))
		case "/v1/users/me/game-info":
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("token expired"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	err = c.Register(ctx, RegisterRequest{UserName: "x"})
	problem, ok := err.(*Problem)
	if !ok {
		t.Fatalf("Register error = %T, want *Problem", err)
	}
	if problem.Status != http.StatusBadRequest || problem.Title != "Validation failed" {
		t.Fatalf("problem = %#v, want 400 Validation failed", problem)
	}
	fields := problem.FieldErrors()
	if fields["userName"] != "Too short\nAlready taken" {
		t.Fatalf("FieldErrors = %v, want lower-camel userName with joined messages", fields)
	}

	_, err = c.GameInfo(ctx, "stale")
	problem, ok = err.(*Problem)
	if !ok {
		t.Fatalf("GameInfo error = %T, want *Problem", err)
	}
	if !problem.IsUnauthorized() {
		t.Fatalf("problem status = %d, want 401", problem.Status)
	}
	if problem.Title != "token expired" {
		t.Fatalf("problem title = %q, want body text fallback", problem.Title)
	}
}

func TestClient_TransportFailureBecomesStatusZeroProblem(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	_, err = c.GameInfo(ctx, "tok")
	problem, ok := err.(*Problem)
	if !ok {
		t.Fatalf("error = %T, want *Problem", err)
	}
	if problem.Status != 0 || problem.Detail == "" {
		t.Fatalf("problem = %#v, want status 0 with detail", problem)
	}
}

func TestClient_VoidResponsesSucceedWithoutBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	if err := c.Logout(ctx, "tok"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	// Even calls that normally decode a payload tolerate an empty body.
	if _, err := c.Login(ctx, LoginRequest{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("Login with empty body returned error: %v", err)
	}
}
