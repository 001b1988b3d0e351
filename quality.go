package main

import "strings"

// Content-contract markers the filled body must contain, by content type.
// Matching is case-insensitive substring.
func requiredMarkers(contentType string) []string {
	markers := []string{"Decision rules:", "Tradeoffs:"}
	switch contentType {
	case TypeHowTo, TypeGuide:
		markers = append(markers, "Failure modes:", "SOP checklist:", "Template 1:", "Template 2:")
	case TypeComparison:
		markers = append(markers, "Failure modes:")
	}
	return markers
}

// missingMarkers returns the contract markers absent from body.
func missingMarkers(body, contentType string) []string {
	lower := strings.ToLower(body)
	var missing []string
	for _, m := range requiredMarkers(contentType) {
		if !strings.Contains(lower, strings.ToLower(m)) {
			missing = append(missing, m)
		}
	}
	return missing
}

// qualityFeedback builds the retry preamble listing unmet markers verbatim.
func qualityFeedback(missing []string) string {
	var b strings.Builder
	b.WriteString("QUALITY FEEDBACK: your previous draft failed the content contract.\n")
	b.WriteString("The following required markers were missing. Include each one verbatim:\n")
	for _, m := range missing {
		b.WriteString("- ")
		b.WriteString(m)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
