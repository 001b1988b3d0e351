package main

import (
	"regexp"
	"sort"
	"strings"
)

// maxInternalLinks caps the references block per article.
const maxInternalLinks = 6

const internalLinksHeading = "Internal links"

// linkCandidate is the slice of article metadata the selector ranks on.
type linkCandidate struct {
	Title        string
	Slug         string
	Category     string
	ContentType  string
	BatchID      string
	AudienceType string
	Tools        []string
}

// internalLink is one selected same-site reference.
type internalLink struct {
	Title string
	Path  string
}

// audienceRank orders audiences for the same-batch fallback; unknown last.
func audienceRank(audience string) int {
	switch audience {
	case AudienceBeginner:
		return 0
	case AudienceIntermediate:
		return 1
	case AudienceProfessional:
		return 2
	}
	return 3
}

// adjacentAudiences returns the audiences considered adjacent to the
// current one, in visiting order.
func adjacentAudiences(audience string) []string {
	switch audience {
	case AudienceBeginner:
		return []string{AudienceIntermediate}
	case AudienceIntermediate:
		return []string{AudienceBeginner, AudienceProfessional}
	case AudienceProfessional:
		return []string{AudienceIntermediate}
	}
	return nil
}

// selectInternalLinks picks up to six references for the current article.
// Tiers, in order: same batch (audience-adjacent first, then by audience
// rank), same category, overlapping tools, same content type. Within a
// tier candidates keep their source-list order, each is used at most once,
// and the current slug is never returned.
func selectInternalLinks(current linkCandidate, candidates []linkCandidate) []internalLink {
	var links []internalLink
	used := map[string]bool{current.Slug: true}

	take := func(c linkCandidate) bool {
		if used[c.Slug] || c.Slug == "" {
			return len(links) < maxInternalLinks
		}
		used[c.Slug] = true
		links = append(links, internalLink{Title: c.Title, Path: "/articles/" + c.Slug + "/"})
		return len(links) < maxInternalLinks
	}

	// Tier 1: same batch.
	if current.BatchID != "" {
		var batch []linkCandidate
		for _, c := range candidates {
			if c.BatchID == current.BatchID {
				batch = append(batch, c)
			}
		}
		taken := map[string]bool{}
		for _, adj := range adjacentAudiences(current.AudienceType) {
			for _, c := range batch {
				if c.AudienceType != adj || taken[c.Slug] {
					continue
				}
				taken[c.Slug] = true
				if !take(c) {
					return links
				}
			}
		}
		rest := make([]linkCandidate, 0, len(batch))
		for _, c := range batch {
			if !taken[c.Slug] {
				rest = append(rest, c)
			}
		}
		sort.SliceStable(rest, func(i, j int) bool {
			return audienceRank(rest[i].AudienceType) < audienceRank(rest[j].AudienceType)
		})
		for _, c := range rest {
			if !take(c) {
				return links
			}
		}
	}

	// Tier 2: same category.
	for _, c := range candidates {
		if c.Category != "" && c.Category == current.Category {
			if !take(c) {
				return links
			}
		}
	}

	// Tier 3: overlapping tools.
	for _, c := range candidates {
		if toolsOverlap(current.Tools, c.Tools) {
			if !take(c) {
				return links
			}
		}
	}

	// Tier 4: same content type.
	for _, c := range candidates {
		if c.ContentType != "" && c.ContentType == current.ContentType {
			if !take(c) {
				return links
			}
		}
	}

	return links
}

func toolsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := map[string]bool{}
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if set[t] {
			return true
		}
	}
	return false
}

// formatInternalLinks renders the selected links as bullet lines.
func formatInternalLinks(links []internalLink) string {
	var b strings.Builder
	for _, l := range links {
		b.WriteString("- [")
		b.WriteString(l.Title)
		b.WriteString("](")
		b.WriteString(l.Path)
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var headingLineRe = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)

// substituteInternalLinks places the link block into a body: preferentially
// for the {{INTERNAL_LINKS}} mustache, otherwise by overwriting the
// contents of the `Internal links` section. The section runs until the
// next heading of the same or higher level, or end of body.
func substituteInternalLinks(body, block string) string {
	if strings.Contains(body, "{{INTERNAL_LINKS}}") {
		return strings.Replace(body, "{{INTERNAL_LINKS}}", block, 1)
	}

	lines := strings.Split(body, "\n")
	start, level := -1, 0
	for i, line := range lines {
		if m := headingLineRe.FindStringSubmatch(line); m != nil && m[2] == internalLinksHeading {
			start, level = i, len(m[1])
			break
		}
	}
	if start < 0 {
		return body
	}
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if m := headingLineRe.FindStringSubmatch(lines[i]); m != nil && len(m[1]) <= level {
			end = i
			break
		}
	}

	var out []string
	out = append(out, lines[:start+1]...)
	out = append(out, "")
	if block != "" {
		out = append(out, block, "")
	}
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}
