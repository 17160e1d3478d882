package universe

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"MarketMovers/internal/model"
)

func TestLoad_DedupWithinSource(t *testing.T) {
	got, err := Load([]Source{{Symbols: []string{"A", "B", "A"}, Names: []string{"Alpha", "Beta", "Alpha2"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Symbol{{Ticker: "A", Name: "Alpha"}, {Ticker: "B", Name: "Beta"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d symbols, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLoad_FirstSourceWins(t *testing.T) {
	got, err := Load([]Source{
		{Symbols: []string{"AAPL", "MSFT"}, Names: []string{"Apple", "Microsoft"}},
		{Symbols: []string{"IBM", "AAPL"}, Names: []string{"IBM Corp", "Apple Again"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tickers := make([]string, len(got))
	for i, s := range got {
		tickers[i] = s.Ticker
	}
	if strings.Join(tickers, ",") != "AAPL,MSFT,IBM" {
		t.Errorf("unexpected order: %v", tickers)
	}
	if got[0].Name != "Apple" {
		t.Errorf("expected first-seen name Apple, got %q", got[0].Name)
	}
}

func TestLoad_MismatchedLengths(t *testing.T) {
	_, err := Load([]Source{
		{Symbols: []string{"A"}, Names: []string{"Alpha"}},
		{Origin: "nyse.txt", Symbols: []string{"B", "C"}, Names: []string{"Beta"}},
	})
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "nyse.txt") {
		t.Errorf("expected origin in error, got %q", err.Error())
	}
}

func TestLoad_Empty(t *testing.T) {
	got, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no symbols, got %d", len(got))
	}
}

func TestReadSource(t *testing.T) {
	in := "Symbol\tDescription\nAAPL\tApple Inc.\n MSFT \tMicrosoft Corp\n\nIBM\tIBM\n"
	src, err := ReadSource(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(src.Symbols, ",") != "AAPL,MSFT,IBM" {
		t.Errorf("unexpected symbols: %v", src.Symbols)
	}
	if src.Names[1] != "Microsoft Corp" {
		t.Errorf("expected trimmed name, got %q", src.Names[1])
	}
}

func TestReadSource_MissingNameIsMalformed(t *testing.T) {
	src, err := ReadSource(strings.NewReader("Symbol\tDescription\nAAPL\tApple\nMSFT\n"))
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if _, err := Load([]Source{src}); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	nasdaq := filepath.Join(dir, "nasdaq.txt")
	nyse := filepath.Join(dir, "nyse.txt")
	if err := os.WriteFile(nasdaq, []byte("Symbol\tName\nAAPL\tApple\nMSFT\tMicrosoft\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(nyse, []byte("Symbol\tName\nIBM\tIBM\nMSFT\tMicrosoft NYSE\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFiles([]string{nasdaq, nyse})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(got))
	}
	if got[1].Name != "Microsoft" {
		t.Errorf("expected nasdaq name to win, got %q", got[1].Name)
	}
}

func TestLoadFiles_Missing(t *testing.T) {
	if _, err := LoadFiles([]string{filepath.Join(t.TempDir(), "none.txt")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
