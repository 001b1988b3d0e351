package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// The catalogue files are a line-oriented YAML subset: one top-level key
// holding a sequence of flat mappings. Reading is permissive — an entry
// that fails to decode is skipped with a WARN so one bad record never
// takes down a stage. Writing is canonical: a fixed comment header, fields
// in a fixed order, and double quotes only where the value needs them.

// loadCatalogEntries returns the sequence nodes under topKey. A missing
// file reads as empty.
func loadCatalogEntries(path, topKey string) ([]*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: expected a top-level mapping", path)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == topKey && root.Content[i+1].Kind == yaml.SequenceNode {
			return root.Content[i+1].Content, nil
		}
	}
	return nil, nil
}

// decodeEntries decodes each sequence node into out's element type, calling
// warn and continuing when a node does not decode.
func decodeEntries[T any](nodes []*yaml.Node, warn func(string)) []T {
	var out []T
	for i, node := range nodes {
		var entry T
		if err := node.Decode(&entry); err != nil {
			if warn != nil {
				warn(fmt.Sprintf("skipping entry %d: %v", i+1, err))
			}
			continue
		}
		out = append(out, entry)
	}
	return out
}

func loadTools(path string, j *journal) ([]Tool, error) {
	nodes, err := loadCatalogEntries(path, "tools")
	if err != nil {
		return nil, err
	}
	tools := decodeEntries[Tool](nodes, warnFn(j, "tools"))
	reportDuplicateTools(tools, j)
	return tools, nil
}

func loadUseCases(path string, j *journal) ([]UseCase, error) {
	nodes, err := loadCatalogEntries(path, "use_cases")
	if err != nil {
		return nil, err
	}
	cases := decodeEntries[UseCase](nodes, warnFn(j, "use_cases"))
	for i := range cases {
		if cases[i].Status == "" {
			cases[i].Status = StatusTodo
		}
	}
	return cases, nil
}

func loadQueue(path string, j *journal) ([]QueueEntry, error) {
	nodes, err := loadCatalogEntries(path, "queue")
	if err != nil {
		return nil, err
	}
	entries := decodeEntries[QueueEntry](nodes, warnFn(j, "queue"))
	for i := range entries {
		if entries[i].Status == "" {
			entries[i].Status = StatusTodo
		}
	}
	return entries, nil
}

func loadMapping(path string, j *journal) ([]MappingEntry, error) {
	nodes, err := loadCatalogEntries(path, "mappings")
	if err != nil {
		return nil, err
	}
	return decodeEntries[MappingEntry](nodes, warnFn(j, "mapping")), nil
}

func warnFn(j *journal, slug string) func(string) {
	if j == nil {
		return nil
	}
	return func(msg string) { j.Warn(slug, msg) }
}

// toolBaseURL reduces an affiliate link to scheme + lowercased host (minus
// a leading www.) + path without its trailing slash. Two tools sharing a
// base are duplicates.
func toolBaseURL(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(link)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return u.Scheme + "://" + host + strings.TrimSuffix(u.Path, "/")
}

func reportDuplicateTools(tools []Tool, j *journal) {
	if j == nil {
		return
	}
	seen := map[string]string{}
	for _, t := range tools {
		base := toolBaseURL(t.AffiliateLink)
		if base == "" {
			continue
		}
		if prev, ok := seen[base]; ok {
			j.Warn("tools", fmt.Sprintf("duplicate base URL %s: %s and %s", base, prev, t.Name))
			continue
		}
		seen[base] = t.Name
	}
}

// --- canonical writers ---

const toolsHeader = `# Affiliate tool catalogue.
# One entry per tool; tools sharing a base URL are duplicates.
`

const useCasesHeader = `# Use-case backlog.
# Each problem seeds one queue entry; status flips to generated once queued.
`

const queueHeader = `# Article production queue.
# Entries are materialised into drafts; status flips to generated on disk.
`

const mappingHeader = `# Editorial problem -> tools mapping.
# Tool names must resolve against the affiliate tool catalogue.
`

func saveTools(path string, tools []Tool) error {
	var b strings.Builder
	b.WriteString(toolsHeader)
	b.WriteString("tools:\n")
	for _, t := range tools {
		writeCatalogField(&b, true, "name", t.Name)
		writeCatalogField(&b, false, "category", t.Category)
		writeCatalogField(&b, false, "affiliate_link", t.AffiliateLink)
		if t.ShortDescriptionEn != "" {
			writeCatalogField(&b, false, "short_description_en", t.ShortDescriptionEn)
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func saveUseCases(path string, cases []UseCase) error {
	var b strings.Builder
	b.WriteString(useCasesHeader)
	b.WriteString("use_cases:\n")
	for _, uc := range cases {
		writeCatalogField(&b, true, "problem", uc.Problem)
		writeCatalogField(&b, false, "suggested_content_type", uc.SuggestedContentType)
		writeCatalogField(&b, false, "category_slug", uc.CategorySlug)
		if uc.AudienceType != "" {
			writeCatalogField(&b, false, "audience_type", uc.AudienceType)
		}
		if uc.BatchID != "" {
			writeCatalogField(&b, false, "batch_id", uc.BatchID)
		}
		writeCatalogField(&b, false, "status", uc.Status)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func saveQueue(path string, entries []QueueEntry) error {
	var b strings.Builder
	b.WriteString(queueHeader)
	b.WriteString("queue:\n")
	for _, q := range entries {
		writeCatalogField(&b, true, "title", q.Title)
		writeCatalogField(&b, false, "content_type", q.ContentType)
		writeCatalogField(&b, false, "category", q.Category)
		writeCatalogField(&b, false, "primary_keyword", q.PrimaryKeyword)
		writeCatalogField(&b, false, "tools", q.Tools)
		writeCatalogField(&b, false, "primary_tool", q.PrimaryTool)
		if q.SecondaryTool != "" {
			writeCatalogField(&b, false, "secondary_tool", q.SecondaryTool)
		}
		if q.AudienceType != "" {
			writeCatalogField(&b, false, "audience_type", q.AudienceType)
		}
		if q.BatchID != "" {
			writeCatalogField(&b, false, "batch_id", q.BatchID)
		}
		writeCatalogField(&b, false, "status", q.Status)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func saveMapping(path string, entries []MappingEntry) error {
	var b strings.Builder
	b.WriteString(mappingHeader)
	b.WriteString("mappings:\n")
	for _, m := range entries {
		writeCatalogField(&b, true, "problem", m.Problem)
		b.WriteString("    tools:\n")
		for _, t := range m.Tools {
			b.WriteString("      - ")
			b.WriteString(quoteCatalogValue(t))
			b.WriteString("\n")
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// writeCatalogField emits one `key: value` line, with the sequence dash on
// the first field of an entry.
func writeCatalogField(b *strings.Builder, first bool, key, value string) {
	if first {
		b.WriteString("  - ")
	} else {
		b.WriteString("    ")
	}
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(quoteCatalogValue(value))
	b.WriteString("\n")
}

// quoteCatalogValue double-quotes values that would not survive as bare
// scalars: anything containing `:`, `#`, `"`, or a newline, plus empty
// strings and values with edge whitespace.
func quoteCatalogValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ":#\"\n") && strings.TrimSpace(v) == v {
		return v
	}
	escaped := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n").Replace(v)
	return "\"" + escaped + "\""
}
