// Package export writes a year's bracket and standings as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/AdamBeresnev/spread-pool/internal/service"
)

const (
	BracketSheet   = "Bracket"
	StandingsSheet = "Standings"
)

var (
	bracketHeader = []any{
		"Round", "Region", "Game",
		"Team A", "Seed A", "Owner A",
		"Team B", "Seed B", "Owner B",
		"Score A", "Score B", "Spread", "Status",
		"Winner", "Covering Owner",
	}
	standingsHeader = []any{"Rank", "Participant", "Drafted", "Owned", "Alive", "Champion"}
)

// Workbook builds the two-sheet workbook for data and standings.
func Workbook(data *service.BracketData, standings []service.Standing) (*excelize.File, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(BracketSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(StandingsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeBracket(f, data, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("write bracket sheet: %w", err)
	}
	if err := writeStandings(f, standings, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("write standings sheet: %w", err)
	}
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, data *service.BracketData, standings []service.Standing) error {
	f, err := Workbook(data, standings)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeBracket(f *excelize.File, data *service.BracketData, style int) error {
	if err := writeRow(f, BracketSheet, 1, bracketHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(BracketSheet, 1, 1, style); err != nil {
		return err
	}

	for i, g := range data.Games {
		row := []any{
			g.Round.String(), string(g.Region), g.Position + 1,
			teamName(data, g.SlotATeamID), teamSeed(data, g.SlotATeamID), ownerName(data, g.SlotAOwnerID),
			teamName(data, g.SlotBTeamID), teamSeed(data, g.SlotBTeamID), ownerName(data, g.SlotBOwnerID),
			intOrBlank(g.ScoreA), intOrBlank(g.ScoreB), spreadOrBlank(g.Spread), string(g.Status),
			"", "",
		}
		if g.IsFinal() && g.TeamWinner != nil {
			row[13] = teamName(data, g.TeamIn(*g.TeamWinner))
			row[14] = ownerName(data, g.OwnerWinnerID)
		}
		if err := writeRow(f, BracketSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeStandings(f *excelize.File, standings []service.Standing, style int) error {
	if err := writeRow(f, StandingsSheet, 1, standingsHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(StandingsSheet, 1, 1, style); err != nil {
		return err
	}

	for i, st := range standings {
		champion := ""
		if st.Champion {
			champion = "yes"
		}
		row := []any{i + 1, st.Participant.Name, st.InitialTeams, st.Owned, st.Alive, champion}
		if err := writeRow(f, StandingsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func teamName(data *service.BracketData, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	if t, ok := data.Teams[*id]; ok {
		return t.Name
	}
	return id.String()
}

func teamSeed(data *service.BracketData, id *uuid.UUID) any {
	if id == nil {
		return ""
	}
	if t, ok := data.Teams[*id]; ok {
		return t.Seed
	}
	return ""
}

func ownerName(data *service.BracketData, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	if p, ok := data.Participants[*id]; ok {
		return p.Name
	}
	return id.String()
}

func intOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func spreadOrBlank(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
