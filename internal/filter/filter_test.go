package filter

import (
	"context"
	"testing"
)

const ordersBody = `{"orders":[{"id":1,"status":"paid"},{"id":2,"status":"open"},{"id":3,"status":"paid"}]}`

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		query  string
		want   string
	}{
		{name: "no expressions", want: ordersBody},
		{name: "query only", query: "orders[0].id", want: "1"},
		{name: "filter then query", filter: "orders[?status=='paid']", query: "[].id", want: "[\n  1,\n  3\n]"},
		{name: "missing field", query: "nothing", want: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(context.Background(), ordersBody, tt.filter, tt.query)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestApply_Errors(t *testing.T) {
	if _, err := Apply(context.Background(), "not json", "", "a"); err == nil {
		t.Error("Expected error for non-JSON body")
	}
	if _, err := Apply(context.Background(), ordersBody, "orders[?", ""); err == nil {
		t.Error("Expected error for invalid expression")
	}
}

func TestApply_ShellCommand(t *testing.T) {
	got, err := Apply(context.Background(), ordersBody, "", "$(wc -c | tr -d ' ')")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got == "" {
		t.Error("Expected command output")
	}
}

func TestSearchData(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "ada"}}
	got, err := SearchData(data, "user.name")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ada" {
		t.Errorf("Expected 'ada', got %v", got)
	}
}

func TestIsValidAndIsShellCommand(t *testing.T) {
	if !IsValid("a.b[0]") {
		t.Error("Expected valid expression")
	}
	if IsValid("a[") {
		t.Error("Expected invalid expression")
	}
	if !IsShellCommand("$(jq .)") || IsShellCommand("jq .") {
		t.Error("Unexpected shell command detection")
	}
}
