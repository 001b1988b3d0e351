package main

import (
	"strings"
	"testing"
)

func TestRequiredMarkers(t *testing.T) {
	tests := []struct {
		contentType string
		count       int
		extras      []string
	}{
		{TypeBest, 2, nil},
		{TypeReview, 2, nil},
		{TypeComparison, 3, []string{"Failure modes:"}},
		{TypeHowTo, 6, []string{"Failure modes:", "SOP checklist:", "Template 1:", "Template 2:"}},
		{TypeGuide, 6, []string{"Failure modes:", "SOP checklist:", "Template 1:", "Template 2:"}},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			markers := requiredMarkers(tt.contentType)
			if len(markers) != tt.count {
				t.Errorf("marker count = %d, want %d: %v", len(markers), tt.count, markers)
			}
			if markers[0] != "Decision rules:" || markers[1] != "Tradeoffs:" {
				t.Errorf("base markers missing: %v", markers)
			}
			for _, extra := range tt.extras {
				found := false
				for _, m := range markers {
					if m == extra {
						found = true
					}
				}
				if !found {
					t.Errorf("marker %q missing for %s", extra, tt.contentType)
				}
			}
		})
	}
}

func TestMissingMarkers(t *testing.T) {
	body := "Decision rules: pick by volume.\ntradeoffs: speed versus control.\nFailure modes: silent drops."
	missing := missingMarkers(body, TypeHowTo)
	want := []string{"SOP checklist:", "Template 1:", "Template 2:"}
	if len(missing) != len(want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, missing[i], want[i])
		}
	}

	// Case-insensitive matching: lowercase tradeoffs counted above.
	if len(missingMarkers(body, TypeComparison)) != 0 {
		t.Errorf("comparison contract should be satisfied: %v", missingMarkers(body, TypeComparison))
	}
}

func TestQualityFeedback(t *testing.T) {
	feedback := qualityFeedback([]string{"SOP checklist:", "Template 1:"})
	if !strings.HasPrefix(feedback, "QUALITY FEEDBACK") {
		t.Errorf("preamble missing: %q", feedback)
	}
	for _, m := range []string{"SOP checklist:", "Template 1:"} {
		if !strings.Contains(feedback, "- "+m) {
			t.Errorf("marker %q not listed verbatim", m)
		}
	}
}
