package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Cost model: 4 chars ≈ 1 token, priced at 0.30 per million tokens.
const costPerMillionTokens = 0.30

// estimateTokens approximates the token count of text.
func estimateTokens(text string) int {
	return len(text) / 4
}

// costForTokens converts a token count into an accrued cost.
func costForTokens(tokens int) float64 {
	return float64(tokens) * costPerMillionTokens / 1e6
}

// costLedger persists accumulated model spend per ISO date. Daily totals
// only ever grow; Reset empties the ledger.
type costLedger struct {
	path    string
	entries map[string]float64
}

// loadCostLedger reads the ledger, treating a missing file as empty.
func loadCostLedger(path string) (*costLedger, error) {
	l := &costLedger{path: path, entries: map[string]float64{}}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cost ledger: %w", err)
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("parsing cost ledger %s: %w", path, err)
	}
	return l, nil
}

// Add accrues cost against a date and persists the ledger.
func (l *costLedger) Add(date string, cost float64) error {
	l.entries[date] += cost
	return l.save()
}

// Total returns the accumulated cost for a date.
func (l *costLedger) Total(date string) float64 {
	return l.entries[date]
}

// Dates returns every recorded date in ascending order.
func (l *costLedger) Dates() []string {
	dates := make([]string, 0, len(l.entries))
	for d := range l.entries {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Reset clears the ledger.
func (l *costLedger) Reset() error {
	l.entries = map[string]float64{}
	return l.save()
}

func (l *costLedger) save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, append(data, '\n'), 0644)
}
