package emporia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_ItemCatalogRoundTrip(t *testing.T) {
	t.Parallel()

	var gotMethods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethods = append(gotMethods, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v1/items" && r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode([]Item{{ID: 1, Name: "Sword", Type: EquippableOnBody}})
		case r.URL.Path == "/v1/items" && r.Method == http.MethodPost:
			var req CreateItemRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(Item{ID: 2, Name: req.Name, Description: req.Description})
		case r.URL.Path == "/v1/items/2" && r.Method == http.MethodPut:
			_ = json.NewEncoder(w).Encode(Item{ID: 2, Name: "Renamed"})
		case r.URL.Path == "/v1/items/2" && r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
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

	items, err := c.Items(ctx, "tok")
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Sword" {
		t.Fatalf("Items = %#v, want the catalog", items)
	}

	created, err := c.CreateItem(ctx, "tok", CreateItemRequest{Name: "Potion", Description: "Heals"})
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}
	if created.ID != 2 || created.Name != "Potion" {
		t.Fatalf("CreateItem = %#v, want echoed item with id 2", created)
	}

	updated, err := c.UpdateItem(ctx, "tok", 2, CreateItemRequest{Name: "Renamed"})
	if err != nil {
		t.Fatalf("UpdateItem returned error: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("UpdateItem = %#v, want renamed item", updated)
	}

	if err := c.DeleteItem(ctx, "tok", 2); err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}

	want := []string{
		"GET /v1/items",
		"POST /v1/items",
		"PUT /v1/items/2",
		"DELETE /v1/items/2",
	}
	if len(gotMethods) != len(want) {
		t.Fatalf("requests = %v, want %v", gotMethods, want)
	}
	for i := range want {
		if gotMethods[i] != want[i] {
			t.Fatalf("request %d = %q, want %q", i, gotMethods[i], want[i])
		}
	}
}
