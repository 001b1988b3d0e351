package main

import (
	"strings"
	"testing"
)

func TestParseFrontmatter(t *testing.T) {
	text := "---\n" +
		"title: \"Fixing invoice chasing\"\n" +
		"content_type: how-to\n" +
		"category: 'operations'\n" +
		"status: draft\n" +
		"---\n\n# Heading\n\nBody text"

	fm, body, offset, err := parseFrontmatter(text)
	if err != nil {
		t.Fatalf("parseFrontmatter() error = %v", err)
	}
	if got := fm.Get("title"); got != "Fixing invoice chasing" {
		t.Errorf("title = %q", got)
	}
	if got := fm.Get("content_type"); got != "how-to" {
		t.Errorf("content_type = %q", got)
	}
	if got := fm.Get("category"); got != "operations" {
		t.Errorf("single-quoted category = %q", got)
	}
	if !strings.HasPrefix(body, "\n# Heading") {
		t.Errorf("body = %q", body)
	}
	if text[offset:] != body {
		t.Error("bodyOffset does not point at the body")
	}
	if len(fm.Pairs) != 4 {
		t.Errorf("pair count = %d, want 4", len(fm.Pairs))
	}
}

func TestParseFrontmatterErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no delimiter", "title: x\n"},
		{"unterminated", "---\ntitle: x\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := parseFrontmatter(tt.text); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnquoteHeaderValue(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"bare", "plain value", "plain value"},
		{"double quoted", `"quoted"`, "quoted"},
		{"escaped quote", `"say \"hi\""`, `say "hi"`},
		{"escaped backslash", `"a\\b"`, `a\b`},
		{"single quoted", "'kept: as-is'", "kept: as-is"},
		{"lone quote", `"`, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unquoteHeaderValue(tt.in); got != tt.expected {
				t.Errorf("unquoteHeaderValue(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := "---\n" +
		"title: \"Chasing overdue invoices: a fix\"\n" +
		"content_type: \"guide\"\n" +
		"tools: \"Notion, Airtable\"\n" +
		"status: \"draft\"\n" +
		"---\nBody"

	fm, _, _, err := parseFrontmatter(original)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	serialized := serializeFrontmatter(fm, "")
	fm2, _, _, err := parseFrontmatter(serialized + "\nBody")
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(fm.Pairs) != len(fm2.Pairs) {
		t.Fatalf("pair count changed: %d -> %d", len(fm.Pairs), len(fm2.Pairs))
	}
	for i := range fm.Pairs {
		if fm.Pairs[i] != fm2.Pairs[i] {
			t.Errorf("pair %d changed: %v -> %v", i, fm.Pairs[i], fm2.Pairs[i])
		}
	}
}

func TestSerializeForcesStatus(t *testing.T) {
	fm := &Frontmatter{Pairs: []kv{{"title", "T"}, {"status", "draft"}}}
	out := serializeFrontmatter(fm, StatusFilled)
	if !strings.Contains(out, "status: \"filled\"") {
		t.Errorf("status not forced: %q", out)
	}

	// Status appended when absent.
	fm = &Frontmatter{Pairs: []kv{{"title", "T"}}}
	out = serializeFrontmatter(fm, StatusBlocked)
	if !strings.Contains(out, "status: \"blocked\"") {
		t.Errorf("status not appended: %q", out)
	}
	if !strings.HasSuffix(out, "status: \"blocked\"\n---\n") {
		t.Errorf("appended status not last: %q", out)
	}
}

func TestSerializeEscapesQuotes(t *testing.T) {
	fm := &Frontmatter{Pairs: []kv{{"title", `He said "go"`}}}
	out := serializeFrontmatter(fm, "")
	if !strings.Contains(out, `title: "He said \"go\""`) {
		t.Errorf("quotes not escaped: %q", out)
	}
}

func TestParseHTMLHeader(t *testing.T) {
	text := "<!--\ntitle: \"Legacy piece\"\nstatus: filled\n-->\n<h1>Legacy piece</h1><p>Old body</p>"
	fm, body, err := parseHTMLHeader(text)
	if err != nil {
		t.Fatalf("parseHTMLHeader() error = %v", err)
	}
	if got := fm.Get("title"); got != "Legacy piece" {
		t.Errorf("title = %q", got)
	}
	if !strings.Contains(body, "<h1>") {
		t.Errorf("body = %q", body)
	}

	if _, _, err := parseHTMLHeader("<p>no header</p>"); err == nil {
		t.Error("expected error for missing header")
	}
}

func TestToolList(t *testing.T) {
	fm := &Frontmatter{Pairs: []kv{{"tools", "Notion, Airtable , ,Zapier"}}}
	got := fm.ToolList()
	want := []string{"Notion", "Airtable", "Zapier"}
	if len(got) != len(want) {
		t.Fatalf("ToolList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToolList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
