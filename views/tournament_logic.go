package views

import (
	"sort"

	"github.com/google/uuid"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/service"
	"github.com/AdamBeresnev/spread-pool/internal/utils"
)

type SlotLine struct {
	Team     string
	Seed     int
	Owner    string
	Score    *int
	Winner   bool
	Covering bool
}

type GameCard struct {
	ID     uuid.UUID
	Label  string
	Status bracket.GameStatus
	Spread *float64
	A      SlotLine
	B      SlotLine
}

type RoundColumn struct {
	Round bracket.Round
	Games []GameCard
}

type RegionBracket struct {
	Region bracket.Region
	Rounds []RoundColumn
}

// BracketData is the page model: four regional brackets plus the national
// rounds, each round in position order.
type BracketData struct {
	Year          int
	Status        bracket.TournamentStatus
	Champion      string
	ChampionOwner string
	Regions       []RegionBracket
	National      []RoundColumn
	Standings     []service.Standing
}

func PrepareBracketData(data *service.BracketData, standings []service.Standing) BracketData {
	view := BracketData{Standings: standings}
	if data.Tournament != nil {
		view.Year = data.Tournament.Year
		view.Status = data.Tournament.Status
		view.Champion = teamName(data, data.Tournament.ChampionTeamID)
		view.ChampionOwner = ownerName(data, data.Tournament.ChampionOwnerID)
	}

	regional := make(map[bracket.Region]map[bracket.Round][]bracket.Game)
	national := make(map[bracket.Round][]bracket.Game)
	for _, g := range data.Games {
		if g.Round.Regional() {
			if regional[g.Region] == nil {
				regional[g.Region] = make(map[bracket.Round][]bracket.Game)
			}
			regional[g.Region][g.Round] = append(regional[g.Region][g.Round], g)
			continue
		}
		national[g.Round] = append(national[g.Round], g)
	}

	for _, region := range bracket.Regions {
		rb := RegionBracket{Region: region}
		for _, r := range bracket.Rounds {
			if !r.Regional() {
				continue
			}
			rb.Rounds = append(rb.Rounds, column(data, r, regional[region][r]))
		}
		view.Regions = append(view.Regions, rb)
	}
	for _, r := range bracket.Rounds {
		if r.Regional() {
			continue
		}
		view.National = append(view.National, column(data, r, national[r]))
	}
	return view
}

func column(data *service.BracketData, r bracket.Round, games []bracket.Game) RoundColumn {
	sort.Slice(games, func(i, j int) bool {
		return games[i].Position < games[j].Position
	})
	col := RoundColumn{Round: r, Games: make([]GameCard, 0, len(games))}
	for i := range games {
		col.Games = append(col.Games, card(data, &games[i]))
	}
	return col
}

func card(data *service.BracketData, g *bracket.Game) GameCard {
	c := GameCard{
		ID:     g.ID,
		Label:  g.Label(),
		Status: g.Status,
		Spread: g.Spread,
		A:      buildSlotLine(data, g, bracket.SlotA),
		B:      buildSlotLine(data, g, bracket.SlotB),
	}
	c.A.Score, c.B.Score = g.ScoreA, g.ScoreB
	return c
}

func buildSlotLine(data *service.BracketData, g *bracket.Game, slot bracket.Slot) SlotLine {
	line := SlotLine{
		Team:  teamName(data, g.TeamIn(slot)),
		Seed:  data.Teams[utils.OrZero(g.TeamIn(slot))].Seed,
		Owner: ownerName(data, g.OwnerIn(slot)),
	}
	if g.IsFinal() {
		line.Winner = utils.Same(g.TeamWinner, &slot)
		line.Covering = utils.Same(g.OwnerWinner, &slot)
	}
	return line
}
