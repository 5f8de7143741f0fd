package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
)

type CSVParser struct{}

func (CSVParser) Parse(data []byte) ([]bracket.TeamSeed, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return seedsFromRows(rows)
}
