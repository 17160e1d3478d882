package ranker

import (
	"errors"
	"testing"

	"MarketMovers/internal/model"
)

func table(growth ...float64) model.ResultTable {
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	out := make(model.ResultTable, len(growth))
	for i, g := range growth {
		out[i] = model.PerformanceRecord{Ticker: names[i], Name: names[i], GrowthPct: g}
	}
	return out
}

func tickers(s model.RankedSlice) string {
	var out string
	for _, r := range s {
		out += r.Ticker
	}
	return out
}

func TestRank_TopAndBottom(t *testing.T) {
	top, bottom, err := Rank(table(5, -3, 12, 0, 7), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tickers(top); got != "CE" {
		t.Errorf("expected top CE, got %s", got)
	}
	if got := tickers(bottom); got != "BD" {
		t.Errorf("expected bottom BD, got %s", got)
	}
}

func TestRank_StableTies(t *testing.T) {
	top, bottom, err := Rank(table(1, 3, 1, 3, 2), 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := tickers(top); got != "BDE" {
		t.Errorf("expected top BDE, got %s", got)
	}
	if got := tickers(bottom); got != "ACE" {
		t.Errorf("expected bottom ACE, got %s", got)
	}
}

func TestRank_DepthCoversTable(t *testing.T) {
	tbl := table(4, -1, 9, 2)
	top, bottom, err := Rank(tbl, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != len(tbl) || len(bottom) != len(tbl) {
		t.Fatalf("expected both slices to cover the table, got %d/%d", len(top), len(bottom))
	}
	for i := range top {
		if top[i] != bottom[len(bottom)-1-i] {
			t.Errorf("expected top to be bottom reversed at %d: %s vs %s", i, top[i].Ticker, bottom[len(bottom)-1-i].Ticker)
		}
	}
	seen := map[string]int{}
	for _, r := range top {
		seen[r.Ticker]++
	}
	for _, r := range tbl {
		if seen[r.Ticker] != 1 {
			t.Errorf("expected %s exactly once, got %d", r.Ticker, seen[r.Ticker])
		}
	}
}

func TestRank_Overlap(t *testing.T) {
	top, bottom, err := Rank(table(1, 2, 3), 2)
	if err != nil {
		t.Fatal(err)
	}
	if tickers(top) != "CB" || tickers(bottom) != "AB" {
		t.Errorf("expected overlapping slices CB/AB, got %s/%s", tickers(top), tickers(bottom))
	}
}

func TestRank_Empty(t *testing.T) {
	if _, _, err := Rank(nil, 10); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestRank_SingleRecord(t *testing.T) {
	top, bottom, err := Rank(table(3.5), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || len(bottom) != 1 || top[0] != bottom[0] {
		t.Errorf("expected equal single-element slices, got %v / %v", top, bottom)
	}
}

func TestRank_InvalidDepth(t *testing.T) {
	if _, _, err := Rank(table(1), 0); err == nil {
		t.Fatal("expected error for zero depth")
	}
}

func TestRank_IdempotentAndNonMutating(t *testing.T) {
	tbl := table(2, 2, -5, 8, 0, 2)
	before := tickers(model.RankedSlice(tbl))

	top1, bottom1, _ := Rank(tbl, 3)
	top2, bottom2, _ := Rank(tbl, 3)
	if tickers(top1) != tickers(top2) || tickers(bottom1) != tickers(bottom2) {
		t.Errorf("expected identical rankings, got %s/%s vs %s/%s",
			tickers(top1), tickers(bottom1), tickers(top2), tickers(bottom2))
	}
	if after := tickers(model.RankedSlice(tbl)); after != before {
		t.Errorf("table mutated: %s -> %s", before, after)
	}
}
