// Package emporia provides the HTTP client for the Emporia game API.
//
// # Overview
//
// This package defines the API client for communicating with the Emporia
// backend. It handles HTTP communication, JSON serialization, RFC 7807
// problem responses, and type-safe representation of the API's resources:
// identity, friends, user search, items, inventories, and market offers.
//
// # Architecture
//
// The package is split by resource area:
//
//   - client.go: HTTP client implementation and request/response handling
//   - problem.go: error decoding, including field-level validation errors
//   - types.go: data structures mirroring the API schema, plus the paged
//     query model shared by the list endpoints
//   - identity.go, friends.go, users.go, items.go: endpoint bindings
//
// # Client Usage
//
// Create a client from the API origin:
//
//	client, err := emporia.NewClient("https://api.emporia.example.com")
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	tokens, err := client.Login(ctx, emporia.LoginRequest{
//		Username: "merchant",
//		Password: "hunter2",
//	})
//
// The client is pure transport: protected endpoints take the bearer token
// explicitly, and token lifecycle (refresh, retry on 401) belongs to the
// session package. The underlying http.Client carries a cookie jar so the
// server's refresh cookie survives between calls.
//
// # Error Handling
//
// Every non-2xx response is decoded into a *Problem, which implements error.
// Network and decoding failures are wrapped into a *Problem with Status 0 so
// callers can treat the two uniformly.
package emporia
