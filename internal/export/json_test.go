package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lotas/tabask/internal/types"
)

func TestJSON_NumbersAndDomains(t *testing.T) {
	snap := &types.Snapshot{
		Source:  "chrome",
		TakenAt: time.Now(),
		Tabs: []types.Tab{
			{ID: "A1", Title: "Go docs", URL: "https://go.dev/doc", Active: true},
			{ID: "B2", Title: "Local", URL: "about:blank"},
		},
	}

	result, err := JSON(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Source != "chrome" {
		t.Errorf("source = %q", parsed.Source)
	}
	if len(parsed.Tabs) != 2 {
		t.Fatalf("expected 2 tabs, got %d", len(parsed.Tabs))
	}
	if parsed.Tabs[0].Number != 1 || parsed.Tabs[1].Number != 2 {
		t.Errorf("numbers = %d, %d", parsed.Tabs[0].Number, parsed.Tabs[1].Number)
	}
	if parsed.Tabs[0].Domain != "go.dev" {
		t.Errorf("domain = %q, want go.dev", parsed.Tabs[0].Domain)
	}
	if parsed.Tabs[1].Domain != "about:blank" {
		t.Errorf("domain fallback = %q", parsed.Tabs[1].Domain)
	}
	if !parsed.Tabs[0].Active || parsed.Tabs[1].Active {
		t.Error("active flag not carried over")
	}
}

func TestJSON_EmptySnapshot(t *testing.T) {
	result, err := JSON(&types.Snapshot{Source: "live"})
	if err != nil {
		t.Fatal(err)
	}
	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Tabs == nil || len(parsed.Tabs) != 0 {
		t.Errorf("expected empty tabs array, got %v", parsed.Tabs)
	}
}

func TestJSON_DuplicateOf(t *testing.T) {
	snap := &types.Snapshot{Source: "live", Tabs: []types.Tab{
		{URL: "https://a.example/page/"},
		{URL: "https://a.example/page"},
		{URL: "https://b.example"},
	}}
	result, err := JSON(snap)
	if err != nil {
		t.Fatal(err)
	}
	var parsed jsonExport
	if err := json.Unmarshal([]byte(result), &parsed); err != nil {
		t.Fatal(err)
	}
	if len(parsed.Tabs[0].DuplicateOf) != 1 || parsed.Tabs[0].DuplicateOf[0] != 2 {
		t.Errorf("tab 1 duplicate_of = %v, want [2]", parsed.Tabs[0].DuplicateOf)
	}
	if parsed.Tabs[2].DuplicateOf != nil {
		t.Errorf("tab 3 duplicate_of = %v, want none", parsed.Tabs[2].DuplicateOf)
	}
}
