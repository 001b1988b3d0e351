package main

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Word-count floors for filled bodies.
const (
	wordFloor       = 700
	strictWordFloor = 1000
)

// forbiddenPatterns is the closed set of phrases a filled body must not
// contain, all case-insensitive.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b#\s*1\b`),
	regexp.MustCompile(`(?i)\bnumber\s*one\b`),
	regexp.MustCompile(`(?i)\bthe best\b`),
	regexp.MustCompile(`(?i)\bguarantee(d)?\b`),
	regexp.MustCompile(`\$\d`),
	regexp.MustCompile(`(?i)\bUSD\b`),
	regexp.MustCompile(`(?i)\bper (month|year)\b`),
	regexp.MustCompile(`(?i)\bpricing\b`),
	regexp.MustCompile(`(?i)\b(unlimited|limit(ed)? to|up to \d+)\b`),
}

var templateSectionRe = regexp.MustCompile(`^#{1,3}\s+Template [12]:`)

// headingLines returns the lines carrying the given heading prefix, in order.
func headingLines(body, prefix string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, prefix) {
			out = append(out, line)
		}
	}
	return out
}

func h1Lines(body string) []string { return headingLines(body, "# ") }
func h2Lines(body string) []string { return headingLines(body, "## ") }

// stripTemplateSections removes `Template 1:` / `Template 2:` subsections
// (their heading through the line before the next heading). The copy-paste
// templates inside them legitimately carry bracket tokens.
func stripTemplateSections(body string) string {
	lines := strings.Split(body, "\n")
	var out []string
	skipping := false
	for _, line := range lines {
		if templateSectionRe.MatchString(line) {
			skipping = true
			continue
		}
		if skipping && headingLineRe.MatchString(line) {
			skipping = false
		}
		if !skipping {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// structuralQA checks the post-fill invariants and returns every violated
// one as a human-readable reason. The caller decides between reporting and
// blocking.
func structuralQA(originalBody, filledBody string, strict bool) []string {
	var reasons []string

	// Mustache preservation, both directions.
	origTokens := mustacheTokens(originalBody)
	filledTokens := mustacheTokens(filledBody)
	if lost := tokenDiff(origTokens, filledTokens); len(lost) > 0 {
		reasons = append(reasons, "mustache tokens lost: "+strings.Join(lost, ", "))
	}
	if introduced := tokenDiff(filledTokens, origTokens); len(introduced) > 0 {
		reasons = append(reasons, "mustache tokens introduced: "+strings.Join(introduced, ", "))
	}

	// Bracket elimination outside the template subsections.
	if remaining := bracketPlaceholders(stripTemplateSections(filledBody)); len(remaining) > 0 {
		reasons = append(reasons, fmt.Sprintf("%d bracket placeholder(s) remain, first: %s", len(remaining), remaining[0]))
	}

	// H1 stability.
	origH1 := h1Lines(originalBody)
	filledH1 := h1Lines(filledBody)
	if strings.Join(origH1, "\n") != strings.Join(filledH1, "\n") {
		reasons = append(reasons, fmt.Sprintf("H1 headings changed: had %d, now %d", len(origH1), len(filledH1)))
	}

	// H2 coverage: originals must survive; additions are fine.
	filledH2 := map[string]bool{}
	for _, h := range h2Lines(filledBody) {
		filledH2[h] = true
	}
	for _, h := range h2Lines(originalBody) {
		if !filledH2[h] {
			reasons = append(reasons, "H2 heading dropped: "+h)
		}
	}

	// Word-count floor.
	floor := wordFloor
	if strict {
		floor = strictWordFloor
	}
	if words := len(strings.Fields(filledBody)); words < floor {
		reasons = append(reasons, fmt.Sprintf("body has %d words, floor is %d", words, floor))
	}

	// Forbidden phrases.
	for _, re := range forbiddenPatterns {
		if m := re.FindString(filledBody); m != "" {
			reasons = append(reasons, fmt.Sprintf("forbidden phrase %q (pattern %s)", m, re.String()))
		}
	}

	return reasons
}

// tokenDiff returns the tokens of a that b lacks occurrences of, sorted.
func tokenDiff(a, b map[string]int) []string {
	var diff []string
	for tok, n := range a {
		if b[tok] < n {
			diff = append(diff, tok)
		}
	}
	sort.Strings(diff)
	return diff
}
