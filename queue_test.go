package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDedupeUseCases(t *testing.T) {
	cases := []UseCase{
		{Problem: "Tracking client invoices"},
		{Problem: "tracking client invoices"},            // case-insensitive duplicate
		{Problem: "Tracking client invoices in Notion"},  // containment, both >= 10
		{Problem: "Choosing a CRM for a small business"}, // kept
		{Problem: ""},                                    // dropped
		{Problem: "CRM"},                                 // short: containment rule off
	}
	kept := dedupeUseCases(cases)
	if len(kept) != 3 {
		t.Fatalf("len(kept) = %d, want 3: %+v", len(kept), kept)
	}
	if kept[0].Problem != "Tracking client invoices" ||
		kept[1].Problem != "Choosing a CRM for a small business" ||
		kept[2].Problem != "CRM" {
		t.Errorf("kept = %+v", kept)
	}
}

func TestResolveToolName(t *testing.T) {
	tools := []Tool{{Name: "Notion"}, {Name: "notion clone"}, {Name: "Zapier"}}

	if got, ok := resolveToolName("Notion", tools); !ok || got != "Notion" {
		t.Errorf("exact match = %q, %v", got, ok)
	}
	if got, ok := resolveToolName("zapier", tools); !ok || got != "Zapier" {
		t.Errorf("case-insensitive match = %q, %v", got, ok)
	}
	if _, ok := resolveToolName("Airtable", tools); ok {
		t.Error("unknown tool resolved")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[{"problem": "x"}]`, `[{"problem": "x"}]`},
		{"```json\n[1, 2]\n```", "[1, 2]"},
		{"```\n[1]\n```", "[1]"},
		{"  ```json\n{}\n```  ", "{}"},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueueEntryFromUseCase(t *testing.T) {
	uc := UseCase{
		Problem:              "Tracking Client Invoices",
		SuggestedContentType: "how-to",
		CategorySlug:         "finance",
		AudienceType:         "beginner",
		BatchID:              "2026-08",
	}
	m := MappingEntry{Problem: uc.Problem, Tools: []string{"Notion", "Zapier"}}

	entry := queueEntryFromUseCase(uc, m)
	if entry.Title != "Tracking Client Invoices" {
		t.Errorf("Title = %q", entry.Title)
	}
	if entry.PrimaryKeyword != "tracking client invoices" {
		t.Errorf("PrimaryKeyword = %q", entry.PrimaryKeyword)
	}
	if entry.ContentType != TypeHowTo {
		t.Errorf("ContentType = %q", entry.ContentType)
	}
	if entry.PrimaryTool != "Notion" || entry.SecondaryTool != "Zapier" {
		t.Errorf("tools = %q / %q", entry.PrimaryTool, entry.SecondaryTool)
	}
	if entry.Tools != "Notion, Zapier" {
		t.Errorf("Tools = %q", entry.Tools)
	}
	if entry.Status != StatusTodo {
		t.Errorf("Status = %q", entry.Status)
	}
}

func TestQueueEntryFromUseCaseUnknownType(t *testing.T) {
	uc := UseCase{Problem: "Something", SuggestedContentType: "listicle"}
	entry := queueEntryFromUseCase(uc, MappingEntry{Tools: []string{"Notion"}})
	if entry.ContentType != TypeGuide {
		t.Errorf("ContentType = %q, want %q", entry.ContentType, TypeGuide)
	}
}

// assignServer answers the completion endpoint with a fixed mapping payload.
func assignServer(t *testing.T, assignments []toolAssignment) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := json.Marshal(assignments)
		fmt.Fprintf(w, `{"output_text": %q}`, string(payload))
	}))
}

func TestAssignToolsWithModel(t *testing.T) {
	srv := assignServer(t, []toolAssignment{
		{Problem: "Tracking client invoices", Tools: []string{"notion", "Zapier", "Airtable", "HubSpot"}},
		{Problem: "Unasked problem", Tools: []string{"Notion"}},
		{Problem: "Choosing a CRM", Tools: []string{"Ghost Tool"}},
	})
	defer srv.Close()

	tools := []Tool{{Name: "Notion"}, {Name: "Zapier"}, {Name: "Airtable"}, {Name: "HubSpot"}}
	client := newModelClient("test-key", srv.URL, "gpt-5-mini")
	j := newJournal(filepath.Join(t.TempDir(), "errors.log"))

	entries := assignToolsWithModel(client, []string{"Tracking client invoices", "Choosing a CRM"}, tools, j)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1: %+v", len(entries), entries)
	}
	// Case-insensitive resolution yields the canonical name; assignments
	// clamp to two tools; unknown tools and unasked problems drop out.
	if entries[0].Problem != "Tracking client invoices" {
		t.Errorf("Problem = %q", entries[0].Problem)
	}
	if len(entries[0].Tools) != 2 || entries[0].Tools[0] != "Notion" || entries[0].Tools[1] != "Zapier" {
		t.Errorf("Tools = %v", entries[0].Tools)
	}

	data, _ := os.ReadFile(j.path)
	if !strings.Contains(string(data), `dropping unknown tool "Ghost Tool"`) {
		t.Errorf("journal: %q", string(data))
	}
}

func TestRunGenerate(t *testing.T) {
	root := t.TempDir()
	cfg, err := NewConfig(root)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	toolsYAML := `tools:
  - name: "Notion"
    category: "productivity"
    affiliate_link: "https://notion.so/ref"
  - name: "Zapier"
    category: "automation"
    affiliate_link: "https://zapier.com/ref"
`
	useCasesYAML := `use_cases:
  - problem: "Tracking client invoices"
    suggested_content_type: "how-to"
    category_slug: "operations"
`
	if err := os.WriteFile(cfg.ToolsPath(), []byte(toolsYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.UseCasesPath(), []byte(useCasesYAML), 0644); err != nil {
		t.Fatal(err)
	}

	srv := assignServer(t, []toolAssignment{
		{Problem: "Tracking client invoices", Tools: []string{"Notion", "Zapier"}},
	})
	defer srv.Close()
	client := newModelClient("test-key", srv.URL, "gpt-5-mini")
	j := newJournal(cfg.JournalPath())

	stats, err := runGenerate(cfg, client, j)
	if err != nil {
		t.Fatalf("runGenerate: %v", err)
	}
	if stats.Assigned != 1 || stats.Queued != 1 || stats.Skeletons != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	// The mapping and queue persist with the new entry, the use case flips
	// to generated, and the draft sits under content/articles.
	mapping, err := loadMapping(cfg.MappingPath(), nil)
	if err != nil || len(mapping) != 1 {
		t.Fatalf("mapping = %+v, err %v", mapping, err)
	}
	queue, err := loadQueue(cfg.QueuePath(), nil)
	if err != nil || len(queue) != 1 {
		t.Fatalf("queue = %+v, err %v", queue, err)
	}
	if queue[0].Status != StatusGenerated {
		t.Errorf("queue status = %q", queue[0].Status)
	}
	cases, err := loadUseCases(cfg.UseCasesPath(), nil)
	if err != nil || len(cases) != 1 {
		t.Fatalf("use cases = %+v, err %v", cases, err)
	}
	if cases[0].Status != StatusGenerated {
		t.Errorf("use case status = %q", cases[0].Status)
	}

	drafts, err := filepath.Glob(filepath.Join(cfg.ArticlesDir(), "*.md"))
	if err != nil || len(drafts) != 1 {
		t.Fatalf("drafts = %v, err %v", drafts, err)
	}
	raw, err := os.ReadFile(drafts[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `status: "draft"`) {
		t.Errorf("draft missing status frontmatter:\n%s", raw)
	}

	// A second run is idempotent: nothing new to assign, queue, or write.
	stats, err = runGenerate(cfg, client, j)
	if err != nil {
		t.Fatalf("second runGenerate: %v", err)
	}
	if stats.Assigned != 0 || stats.Queued != 0 || stats.Skeletons != 0 {
		t.Errorf("second run stats = %+v", stats)
	}
}
