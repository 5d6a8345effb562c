package docs

import (
	"reflect"
	"testing"

	"github.com/studiowebux/docportal/internal/types"
)

func sampleEndpoints() []types.EndpointData {
	return []types.EndpointData{
		{ID: "users-get-user", Title: "Get User", Method: "GET", URL: "https://api.x.com/users/1"},
		{ID: "orders-create-order", Title: "Create Order", Method: "POST", URL: "https://api.x.com/orders"},
	}
}

func sampleNav() []types.NavItem {
	return []types.NavItem{
		{ID: "users", Title: "Users", Children: []types.NavItem{
			{ID: "users-get-user", Title: "Get User", Method: "GET"},
		}},
		{ID: "orders", Title: "Orders", Children: []types.NavItem{
			{ID: "orders-create-order", Title: "Create Order", Method: "POST"},
		}},
	}
}

func TestFilterEndpoints_ByMethod(t *testing.T) {
	filtered := FilterEndpoints(sampleEndpoints(), "post")
	if len(filtered) != 1 || filtered[0].Title != "Create Order" {
		t.Errorf("Expected only 'Create Order', got %+v", filtered)
	}
}

func TestFilterEndpoints_ByTitleAndURL(t *testing.T) {
	if got := FilterEndpoints(sampleEndpoints(), "USER"); len(got) != 1 || got[0].ID != "users-get-user" {
		t.Errorf("Expected case-insensitive title match, got %+v", got)
	}
	if got := FilterEndpoints(sampleEndpoints(), "/orders"); len(got) != 1 || got[0].ID != "orders-create-order" {
		t.Errorf("Expected URL match, got %+v", got)
	}
	if got := FilterEndpoints(sampleEndpoints(), ""); len(got) != 2 {
		t.Errorf("Expected empty term to keep all, got %d", len(got))
	}
	if got := FilterEndpoints(sampleEndpoints(), "nothing-matches"); len(got) != 0 {
		t.Errorf("Expected no matches, got %d", len(got))
	}
}

func TestFilterNav_PrunesBranches(t *testing.T) {
	filtered := FilterNav(sampleNav(), "post")
	if len(filtered) != 1 || filtered[0].Title != "Orders" {
		t.Fatalf("Expected only Orders branch, got %+v", filtered)
	}
	if len(filtered[0].Children) != 1 {
		t.Errorf("Expected 1 child, got %d", len(filtered[0].Children))
	}

	// Folder titles alone do not match; only leaves count
	if got := FilterNav(sampleNav(), "orders"); len(got) != 0 {
		t.Errorf("Expected folder title not to match on its own, got %+v", got)
	}

	// Original tree is untouched
	if len(sampleNav()[0].Children) != 1 {
		t.Error("Expected source nav to be unchanged")
	}
}

func TestView_SearchTakesPrecedence(t *testing.T) {
	result := Result{Endpoints: sampleEndpoints(), Nav: sampleNav()}
	var view View

	view.Select("users-get-user")
	visible := view.Apply(result)
	if len(visible.Endpoints) != 1 || visible.Endpoints[0].ID != "users-get-user" {
		t.Fatalf("Expected selection to narrow to one endpoint, got %+v", visible.Endpoints)
	}

	view.SetSearch("post")
	if view.Selected != "" {
		t.Error("Expected search to clear the selection")
	}
	visible = view.Apply(result)
	if len(visible.Endpoints) != 1 || visible.Endpoints[0].ID != "orders-create-order" {
		t.Errorf("Expected search result, got %+v", visible.Endpoints)
	}

	view.SetSearch("")
	view.Select("does-not-exist")
	if got := view.Apply(result); len(got.Endpoints) != 2 {
		t.Errorf("Expected unknown selection to be ignored, got %d endpoints", len(got.Endpoints))
	}
}

func TestDuplicateIDs(t *testing.T) {
	endpoints := []types.EndpointData{
		{ID: "a-list"}, {ID: "b-list"}, {ID: "a-list"}, {ID: "c"}, {ID: "b-list"},
	}
	expected := []string{"a-list", "b-list"}
	if got := DuplicateIDs(endpoints); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if got := DuplicateIDs(sampleEndpoints()); len(got) != 0 {
		t.Errorf("Expected no duplicates, got %v", got)
	}
}

func TestRank(t *testing.T) {
	ranked := Rank(sampleEndpoints(), "crord")
	if len(ranked) == 0 || ranked[0].ID != "orders-create-order" {
		t.Errorf("Expected 'Create Order' to rank first, got %+v", ranked)
	}
	if got := Rank(sampleEndpoints(), ""); len(got) != 2 {
		t.Errorf("Expected empty term to keep all, got %d", len(got))
	}
}

func TestFlatten(t *testing.T) {
	flat := Flatten(sampleNav())
	if len(flat) != 4 {
		t.Fatalf("Expected 4 flattened items, got %d", len(flat))
	}
	if flat[1].Depth != 1 || flat[1].Item.ID != "users-get-user" {
		t.Errorf("Unexpected second item: %+v", flat[1])
	}
}

func TestFind(t *testing.T) {
	if _, ok := Find(sampleEndpoints(), "orders-create-order"); !ok {
		t.Error("Expected to find endpoint")
	}
	if _, ok := Find(sampleEndpoints(), "missing"); ok {
		t.Error("Expected missing endpoint not to be found")
	}
}
