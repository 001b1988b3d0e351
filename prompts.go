package main

import (
	"fmt"
	"strings"
)

// buildInstructions assembles the system-side instructions for a fill:
// role, heading freeze, persona and defensibility rules, the content
// contract for the article's type, tone, and vocabulary denials. An empty
// tool list switches the model to tool-agnostic prose.
func buildInstructions(contentType string, tools []string) string {
	var b strings.Builder

	b.WriteString("You are a senior editor for a practical business-operations site. ")
	b.WriteString("You receive an article draft whose bracket placeholders [like this] must be rewritten into finished prose.\n\n")

	b.WriteString("STRUCTURE RULES:\n")
	b.WriteString("- Keep every # and ## heading exactly as written. Never add, remove, or reword them.\n")
	b.WriteString("- Replace every bracket placeholder with prose. Leave markdown links, images, and checkboxes ([ ], [x], [X], [-]) untouched.\n")
	b.WriteString("- Preserve every {{VARIABLE}} token exactly where it stands.\n\n")

	b.WriteString("PERSONA: write as a practitioner who has run this workflow, not as a vendor. ")
	b.WriteString("Every claim must be defensible from the draft itself or from general operational experience; never invent statistics, customer names, or benchmark numbers.\n\n")

	b.WriteString("OUTPUT CONTRACT — the finished body must contain each of these markers verbatim:\n")
	for _, m := range requiredMarkers(contentType) {
		b.WriteString("- ")
		b.WriteString(m)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(tools) > 0 {
		b.WriteString("TOOLS: you may mention only these tools, by these exact names: ")
		b.WriteString(strings.Join(tools, ", "))
		b.WriteString(". Mention a tool only where it concretely serves the step being described.\n\n")
	} else {
		b.WriteString("TOOLS: remain tool-agnostic. Describe capabilities, never named products.\n\n")
	}

	b.WriteString("STYLE: plain, direct, second person. Short sentences. No hype.\n")
	b.WriteString("VOCABULARY: never use superlative ranking claims, the word pricing, dollar amounts, ")
	b.WriteString("per-month or per-year figures, capacity limits, or any form of guarantee.\n\n")

	b.WriteString("Return only the finished article body. No commentary, no frontmatter.")
	return b.String()
}

// buildUserInput carries the article's identity and raw body to the model.
func buildUserInput(fm *Frontmatter, body string) string {
	return fmt.Sprintf("Title: %s\nPrimary keyword: %s\nCategory: %s\nContent type: %s\n\nDraft body:\n%s",
		fm.Get(keyTitle), fm.Get(keyPrimaryKeyword), fm.Get(keyCategory), fm.Get(keyContentType), body)
}
