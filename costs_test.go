package main

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Errorf("estimateTokens(400 chars) = %d, want 100", got)
	}
	if got := estimateTokens("abc"); got != 0 {
		t.Errorf("estimateTokens(3 chars) = %d, want 0", got)
	}
}

func TestCostForTokens(t *testing.T) {
	if got := costForTokens(1_000_000); math.Abs(got-0.30) > 1e-12 {
		t.Errorf("costForTokens(1M) = %f, want 0.30", got)
	}
}

func TestCostLedgerAccrual(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.json")
	ledger, err := loadCostLedger(path)
	if err != nil {
		t.Fatalf("loadCostLedger: %v", err)
	}

	if err := ledger.Add("2026-08-29", 0.01); err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := ledger.Total("2026-08-29")
	if err := ledger.Add("2026-08-29", 0.02); err != nil {
		t.Fatalf("Add: %v", err)
	}
	after := ledger.Total("2026-08-29")
	if after <= before {
		t.Errorf("daily total not increasing: %f -> %f", before, after)
	}
	if math.Abs(after-0.03) > 1e-12 {
		t.Errorf("total = %f, want 0.03", after)
	}

	// Persistence across reloads.
	reloaded, err := loadCostLedger(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if math.Abs(reloaded.Total("2026-08-29")-0.03) > 1e-12 {
		t.Errorf("reloaded total = %f", reloaded.Total("2026-08-29"))
	}
}

func TestCostLedgerReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.json")
	ledger, _ := loadCostLedger(path)
	ledger.Add("2026-08-28", 0.5)
	ledger.Add("2026-08-29", 0.5)

	if err := ledger.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(ledger.Dates()) != 0 {
		t.Errorf("dates after reset = %v", ledger.Dates())
	}
	reloaded, _ := loadCostLedger(path)
	if reloaded.Total("2026-08-28") != 0 {
		t.Error("reset did not persist")
	}
}

func TestCostLedgerDatesSorted(t *testing.T) {
	ledger, _ := loadCostLedger(filepath.Join(t.TempDir(), "costs.json"))
	ledger.Add("2026-08-29", 0.1)
	ledger.Add("2026-01-02", 0.1)
	ledger.Add("2026-05-10", 0.1)
	dates := ledger.Dates()
	want := []string{"2026-01-02", "2026-05-10", "2026-08-29"}
	for i := range want {
		if dates[i] != want[i] {
			t.Fatalf("dates = %v, want %v", dates, want)
		}
	}
}
