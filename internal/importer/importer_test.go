package importer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
)

func fieldRows() [][]string {
	rows := [][]string{{"Team Name", "Seed", "Region"}}
	for _, r := range bracket.Regions {
		for s := 1; s <= bracket.TeamsPerRegion; s++ {
			rows = append(rows, []string{fmt.Sprintf("%s %d", r, s), fmt.Sprint(s), strings.ToLower(string(r))})
		}
	}
	return rows
}

func fieldCSV() string {
	var b strings.Builder
	for _, row := range fieldRows() {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}
	return b.String()
}

func fieldXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range fieldRows() {
		for j, v := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestCSVParser(t *testing.T) {
	seeds, err := CSVParser{}.Parse([]byte(fieldCSV()))
	require.NoError(t, err)
	require.Len(t, seeds, 64)
	assert.Equal(t, bracket.TeamSeed{Name: "East 1", Seed: 1, Region: bracket.East}, seeds[0])
	assert.NoError(t, bracket.ValidateSeeds(seeds))
}

func TestXLSXParser(t *testing.T) {
	seeds, err := XLSXParser{}.Parse(fieldXLSX(t))
	require.NoError(t, err)
	require.Len(t, seeds, 64)
	assert.Equal(t, bracket.TeamSeed{Name: "Midwest 16", Seed: 16, Region: bracket.Midwest}, seeds[63])
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"no rows", "team_name,seed,region\n", "file"},
		{"missing region column", "team_name,seed\nDuke,1\n", "region"},
		{"missing seed column", "team,region\nDuke,East\n", "seed"},
		{"bad seed", "team_name,seed,region\nDuke,one,East\n", "seed"},
		{"bad region", "team_name,seed,region\nDuke,1,North\n", "region"},
		{"empty name", "team_name,seed,region\n,1,East\n", "team_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CSVParser{}.Parse([]byte(tt.input))
			var verr *bracket.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSkipsBlankRows(t *testing.T) {
	seeds, err := CSVParser{}.Parse([]byte("name,seed,region\n\n,,\nDuke,1,East\n"))
	require.NoError(t, err)
	assert.Len(t, seeds, 1)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "field.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(fieldCSV()), 0o600))
	seeds, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, seeds, 64)

	xlsxPath := filepath.Join(dir, "field.xlsx")
	require.NoError(t, os.WriteFile(xlsxPath, fieldXLSX(t), 0o600))
	seeds, err = ReadFile(xlsxPath)
	require.NoError(t, err)
	assert.Len(t, seeds, 64)

	short := filepath.Join(dir, "short.csv")
	require.NoError(t, os.WriteFile(short, []byte("name,seed,region\nDuke,1,East\n"), 0o600))
	_, err = ReadFile(short)
	assert.ErrorIs(t, err, bracket.ErrMalformedBracket)

	_, err = ReadFile(filepath.Join(dir, "field.json"))
	assert.Error(t, err)
}
