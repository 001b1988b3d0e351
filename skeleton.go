package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugCollapseRe = regexp.MustCompile(`[\s-]+`)
)

// slugify derives a filename stem from a keyword: lowercase, strip anything
// outside [a-z0-9\s-], collapse whitespace and hyphen runs to single
// hyphens. The empty result falls back to "article".
func slugify(keyword string) string {
	s := strings.ToLower(keyword)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "article"
	}
	return s
}

// normalizeCategory applies the configured category mode. production_only
// forces every article into the production category; preserve_sandbox keeps
// whitelisted categories and forces the rest. Idempotent in both modes.
func normalizeCategory(category string, settings *Settings) string {
	if settings.CategoryMode == categoryModePreserveSandbox {
		if category == settings.ProductionCategory {
			return category
		}
		for _, sandbox := range settings.SandboxCategories {
			if category == sandbox {
				return category
			}
		}
	}
	return settings.ProductionCategory
}

// toolsMentioned is the ordered union of the entry's primary tool,
// secondary tool, and tools list.
func toolsMentioned(entry QueueEntry) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		if name = strings.TrimSpace(name); name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	add(entry.PrimaryTool)
	add(entry.SecondaryTool)
	for _, t := range splitTools(entry.Tools) {
		add(t)
	}
	return out
}

// renderSkeleton combines a queue entry, its template, and a computed link
// block into draft article text. Every mustache variable with a value is
// substituted; variables without one stay in place for a later stage,
// except {{LAST_UPDATED}} which defaults to today.
func renderSkeleton(entry QueueEntry, template, linkBlock, today string, settings *Settings) (content, slug string) {
	contentType, known := normalizeContentType(entry.ContentType)
	if !known {
		log.Printf("Warning: unknown content type %q for %q, using %s", entry.ContentType, entry.Title, contentType)
	}
	category := normalizeCategory(entry.Category, settings)
	slug = slugify(entry.PrimaryKeyword)
	tools := toolsMentioned(entry)

	values := map[string]string{
		"TITLE":           entry.Title,
		"PRIMARY_KEYWORD": entry.PrimaryKeyword,
		"CONTENT_TYPE":    contentType,
		"CATEGORY_SLUG":   category,
		"PRIMARY_TOOL":    entry.PrimaryTool,
		"SECONDARY_TOOL":  entry.SecondaryTool,
		"TOOLS_MENTIONED": strings.Join(tools, ", "),
		"INTERNAL_LINKS":  linkBlock,
		"LAST_UPDATED":    today,
	}
	body := mustacheTokenRe.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[2 : len(tok)-2]
		if v, ok := values[name]; ok && v != "" {
			return v
		}
		return tok
	})
	// User-edited templates may have dropped the {{INTERNAL_LINKS}} token;
	// the links then go into the Internal links section, replacing whatever
	// it held.
	if linkBlock != "" && !strings.Contains(template, "{{INTERNAL_LINKS}}") {
		body = substituteInternalLinks(body, linkBlock)
	}

	fm := &Frontmatter{Pairs: []kv{
		{keyTitle, entry.Title},
		{keyContentType, contentType},
		{keyCategory, category},
		{keyPrimaryKeyword, entry.PrimaryKeyword},
		{keyTools, strings.Join(tools, ", ")},
		{keyLastUpdated, today},
		{keyStatus, StatusDraft},
		{keySlug, slug},
	}}
	if entry.AudienceType != "" {
		fm.Set(keyAudienceType, entry.AudienceType)
	}
	if entry.BatchID != "" {
		fm.Set(keyBatchID, entry.BatchID)
	}

	return serializeFrontmatter(fm, "") + "\n" + body, slug
}

// skeletonFilename places audience-typed outputs under a suffixed stem so
// batch siblings never collide.
func skeletonFilename(dir, slug, audienceType string) string {
	name := slug
	if audienceType != "" {
		name += ".audience_" + audienceType
	}
	return filepath.Join(dir, name+".md")
}

// writeSkeleton materialises one queue entry as a draft on disk and returns
// the path. Candidates feed the internal-link selector; the current slug is
// excluded there.
func writeSkeleton(cfg *Config, store *templateStore, entry QueueEntry, candidates []linkCandidate, today string) (string, error) {
	contentType, _ := normalizeContentType(entry.ContentType)
	template, err := store.Lookup(contentType)
	if err != nil {
		return "", err
	}

	current := linkCandidate{
		Slug:         slugify(entry.PrimaryKeyword),
		Category:     normalizeCategory(entry.Category, cfg.Settings),
		ContentType:  contentType,
		BatchID:      entry.BatchID,
		AudienceType: entry.AudienceType,
		Tools:        toolsMentioned(entry),
	}
	linkBlock := formatInternalLinks(selectInternalLinks(current, candidates))

	content, slug := renderSkeleton(entry, template, linkBlock, today, cfg.Settings)
	path := skeletonFilename(cfg.ArticlesDir(), slug, entry.AudienceType)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing skeleton %s: %w", path, err)
	}
	return path, nil
}
