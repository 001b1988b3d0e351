package main

import "regexp"

// Bracket tokens: `[` then anything but `]`, then `]`. A token immediately
// followed by `(` is markdown link syntax and never a placeholder.
var bracketTokenRe = regexp.MustCompile(`\[[^\]\n]+\]`)

// Mustache tokens `{{NAME}}` are preserved verbatim through the fill cycle.
var mustacheTokenRe = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// checkboxTokens is the closed set of markdown checkbox shapes that look
// like bracket placeholders but are not.
var checkboxTokens = map[string]bool{
	"[ ]": true,
	"[x]": true,
	"[X]": true,
	"[-]": true,
}

// isCheckbox reports whether tok is one of the four checkbox shapes.
func isCheckbox(tok string) bool {
	return checkboxTokens[tok]
}

// bracketPlaceholders returns every bracket placeholder in body, excluding
// checkboxes and link/image syntax.
func bracketPlaceholders(body string) []string {
	var found []string
	for _, loc := range bracketTokenRe.FindAllStringIndex(body, -1) {
		tok := body[loc[0]:loc[1]]
		if isCheckbox(tok) {
			continue
		}
		if loc[1] < len(body) && body[loc[1]] == '(' {
			continue
		}
		found = append(found, tok)
	}
	return found
}

// hasBracketPlaceholders reports whether at least one fillable placeholder
// remains in body.
func hasBracketPlaceholders(body string) bool {
	return len(bracketPlaceholders(body)) > 0
}

// mustacheTokens returns the multiset of {{NAME}} occurrences in text.
func mustacheTokens(text string) map[string]int {
	tokens := map[string]int{}
	for _, m := range mustacheTokenRe.FindAllString(text, -1) {
		tokens[m]++
	}
	return tokens
}
