package main

import (
	"fmt"
	"strings"
)

// Frontmatter key names recognised across the content tree.
const (
	keyTitle          = "title"
	keyContentType    = "content_type"
	keyCategory       = "category"
	keyPrimaryKeyword = "primary_keyword"
	keyTools          = "tools"
	keyLastUpdated    = "last_updated"
	keyStatus         = "status"
	keySlug           = "slug"
	keyAudienceType   = "audience_type"
	keyBatchID        = "batch_id"
)

// kv is one frontmatter line. Pair order is significant and preserved
// across every rewrite.
type kv struct {
	Key   string
	Value string
}

// Frontmatter is the parsed header of an article file.
type Frontmatter struct {
	Pairs []kv
}

// Get returns the value for key, or "" when absent.
func (f *Frontmatter) Get(key string) string {
	for _, p := range f.Pairs {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Set updates an existing pair in place or appends a new one.
func (f *Frontmatter) Set(key, value string) {
	for i, p := range f.Pairs {
		if p.Key == key {
			f.Pairs[i].Value = value
			return
		}
	}
	f.Pairs = append(f.Pairs, kv{Key: key, Value: value})
}

// ToolList splits the comma-separated tools value into trimmed names.
func (f *Frontmatter) ToolList() []string {
	return splitTools(f.Get(keyTools))
}

func splitTools(raw string) []string {
	var tools []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tools = append(tools, t)
		}
	}
	return tools
}

// parseFrontmatter splits an article file into its header and body. The
// header is a `---` delimited block of `key: value` lines at the start of
// the text; values may be bare, double-quoted with \" escapes, or
// single-quoted. bodyOffset is the byte offset where the body begins.
func parseFrontmatter(text string) (fm *Frontmatter, body string, bodyOffset int, err error) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != "---" {
		return nil, "", 0, fmt.Errorf("no frontmatter delimiter at start")
	}

	fm = &Frontmatter{}
	offset := len(lines[0])
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		offset += len(line)
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "---" {
			return fm, text[offset:], offset, nil
		}
		key, value, ok := parseHeaderLine(trimmed)
		if !ok {
			continue // tolerate stray lines rather than failing the file
		}
		fm.Pairs = append(fm.Pairs, kv{Key: key, Value: value})
	}
	return nil, "", 0, fmt.Errorf("unterminated frontmatter block")
}

// parseHTMLHeader reads the legacy variant: an HTML comment at the start of
// the file carrying the same `key: value` lines. Read path only; new writes
// always use `---` frontmatter.
func parseHTMLHeader(text string) (fm *Frontmatter, body string, err error) {
	rest, found := strings.CutPrefix(text, "<!--")
	if !found {
		return nil, "", fmt.Errorf("no leading HTML comment header")
	}
	header, body, found := strings.Cut(rest, "-->")
	if !found {
		return nil, "", fmt.Errorf("unterminated HTML comment header")
	}
	fm = &Frontmatter{}
	for _, line := range strings.Split(header, "\n") {
		if key, value, ok := parseHeaderLine(strings.TrimSpace(line)); ok {
			fm.Pairs = append(fm.Pairs, kv{Key: key, Value: value})
		}
	}
	return fm, strings.TrimPrefix(body, "\n"), nil
}

// parseHeaderLine splits one `key: value` line and unquotes the value.
func parseHeaderLine(line string) (key, value string, ok bool) {
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, unquoteHeaderValue(strings.TrimSpace(value)), true
}

// unquoteHeaderValue strips a matching pair of double or single quotes.
// Double-quoted values honour \" and \\ escapes; single-quoted values are
// taken verbatim.
func unquoteHeaderValue(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		inner := v[1 : len(v)-1]
		var b strings.Builder
		for i := 0; i < len(inner); i++ {
			if inner[i] == '\\' && i+1 < len(inner) && (inner[i+1] == '"' || inner[i+1] == '\\') {
				i++
			}
			b.WriteByte(inner[i])
		}
		return b.String()
	}
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}

// serializeFrontmatter re-emits the header with every value double-quoted
// and the pairs in their original order. When status is non-empty the
// status pair is forced to that value, appended if absent.
func serializeFrontmatter(fm *Frontmatter, status string) string {
	var b strings.Builder
	b.WriteString("---\n")
	haveStatus := false
	for _, p := range fm.Pairs {
		value := p.Value
		if p.Key == keyStatus {
			haveStatus = true
			if status != "" {
				value = status
			}
		}
		writeHeaderLine(&b, p.Key, value)
	}
	if !haveStatus && status != "" {
		writeHeaderLine(&b, keyStatus, status)
	}
	b.WriteString("---\n")
	return b.String()
}

func writeHeaderLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": \"")
	for i := 0; i < len(value); i++ {
		if value[i] == '"' || value[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(value[i])
	}
	b.WriteString("\"\n")
}
