// Package importer reads bracket seed files: one row per team with its name,
// seed and region.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
)

type Parser interface {
	Parse(data []byte) ([]bracket.TeamSeed, error)
}

// ParserFor picks a parser by file extension.
func ParserFor(filename string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return CSVParser{}, nil
	case ".xlsx":
		return XLSXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported seed file type %q", ext)
	}
}

// ReadFile parses and validates the seed file at path.
func ReadFile(path string) ([]bracket.TeamSeed, error) {
	p, err := ParserFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	seeds, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := bracket.ValidateSeeds(seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

var (
	nameColumns   = []string{"team_name", "team", "name"}
	seedColumns   = []string{"seed"}
	regionColumns = []string{"region"}
)

// seedsFromRows turns a header row plus data rows into seeds. Blank rows are
// skipped.
func seedsFromRows(rows [][]string) ([]bracket.TeamSeed, error) {
	if len(rows) < 2 {
		return nil, bracket.Invalid("file", "needs a header and at least one team")
	}

	header := rows[0]
	nameIdx := findColumn(header, nameColumns)
	seedIdx := findColumn(header, seedColumns)
	regionIdx := findColumn(header, regionColumns)
	switch {
	case nameIdx < 0:
		return nil, bracket.Invalid("team_name", "column is missing")
	case seedIdx < 0:
		return nil, bracket.Invalid("seed", "column is missing")
	case regionIdx < 0:
		return nil, bracket.Invalid("region", "column is missing")
	}

	var seeds []bracket.TeamSeed
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}

		name := cell(row, nameIdx)
		if name == "" {
			return nil, bracket.Invalid("team_name", fmt.Sprintf("row %d is empty", line))
		}
		seed, err := strconv.Atoi(cell(row, seedIdx))
		if err != nil {
			return nil, bracket.Invalid("seed", fmt.Sprintf("row %d: %q is not a number", line, cell(row, seedIdx)))
		}
		region, err := bracket.ParseRegion(cell(row, regionIdx))
		if err != nil {
			return nil, bracket.Invalid("region", fmt.Sprintf("row %d: %q is not a region", line, cell(row, regionIdx)))
		}

		seeds = append(seeds, bracket.TeamSeed{Name: name, Seed: seed, Region: region})
	}
	return seeds, nil
}

func findColumn(header []string, names []string) int {
	for i, col := range header {
		norm := normalize(col)
		for _, name := range names {
			if norm == normalize(name) {
				return i
			}
		}
	}
	return -1
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
