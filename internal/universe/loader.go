package universe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"MarketMovers/internal/model"
)

// ErrMalformedInput is returned when a symbol source cannot be paired into (ticker, name) rows.
var ErrMalformedInput = errors.New("malformed symbol source")

// Source is one symbol list with its parallel name list.
type Source struct {
	Origin  string // file path or other identifier, for error messages
	Symbols []string
	Names   []string
}

// Load concatenates sources in order and keeps the first occurrence of each ticker.
func Load(sources []Source) ([]model.Symbol, error) {
	for _, src := range sources {
		if len(src.Symbols) != len(src.Names) {
			return nil, fmt.Errorf("%w: %s has %d symbols and %d names",
				ErrMalformedInput, src.origin(), len(src.Symbols), len(src.Names))
		}
	}

	seen := make(map[string]struct{})
	var out []model.Symbol
	for _, src := range sources {
		for i, ticker := range src.Symbols {
			if _, dup := seen[ticker]; dup {
				continue
			}
			seen[ticker] = struct{}{}
			out = append(out, model.Symbol{Ticker: ticker, Name: src.Names[i]})
		}
	}
	return out, nil
}

func (s Source) origin() string {
	if s.Origin == "" {
		return "source"
	}
	return s.Origin
}

// ReadSourceFile reads a tab-delimited ticker file: one header row, then ticker and name columns.
func ReadSourceFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("open symbol source: %w", err)
	}
	defer f.Close()

	src, err := ReadSource(f)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", path, err)
	}
	src.Origin = path
	return src, nil
}

// ReadSource parses the tab-delimited format from r.
func ReadSource(r io.Reader) (Source, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var src Source
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Source{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		line++
		if line == 1 {
			continue // header
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		ticker := strings.TrimSpace(rec[0])
		if ticker == "" {
			return Source{}, fmt.Errorf("%w: line %d: empty ticker", ErrMalformedInput, line)
		}
		src.Symbols = append(src.Symbols, ticker)
		if len(rec) > 1 {
			src.Names = append(src.Names, strings.TrimSpace(rec[1]))
		}
	}
	// A row missing its name column leaves the lists with different lengths; Load rejects that.
	return src, nil
}

// LoadFiles reads every path and merges them with Load.
func LoadFiles(paths []string) ([]model.Symbol, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		src, err := ReadSourceFile(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return Load(sources)
}
