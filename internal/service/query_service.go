package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/store"
)

// QueryService serves read-only projections of a year.
type QueryService struct {
	db     *sqlx.DB
	stores *store.Stores
}

func NewQueryService(db *sqlx.DB, stores *store.Stores) *QueryService {
	return &QueryService{db: db, stores: stores}
}

func (s *QueryService) Tournament(ctx context.Context, year int) (*bracket.Tournament, error) {
	return s.stores.Tournaments.GetTournament(ctx, nil, year)
}

func (s *QueryService) Tournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.stores.Tournaments.ListTournaments(ctx, nil)
}

func (s *QueryService) Games(ctx context.Context, year int, f store.GameFilter) ([]bracket.Game, error) {
	return s.stores.Games.ListGames(ctx, nil, year, f)
}

func (s *QueryService) Game(ctx context.Context, id uuid.UUID) (*bracket.Game, error) {
	return s.stores.Games.GetGame(ctx, nil, id)
}

func (s *QueryService) Team(ctx context.Context, id uuid.UUID) (*bracket.Team, error) {
	return s.stores.Teams.GetTeam(ctx, nil, id)
}

func (s *QueryService) Teams(ctx context.Context, year int) ([]bracket.Team, error) {
	return s.stores.Teams.ListTeams(ctx, nil, year)
}

// TeamsOwnedBy lists the teams participantID owns now, not the ones drafted.
func (s *QueryService) TeamsOwnedBy(ctx context.Context, year int, participantID uuid.UUID) ([]bracket.Team, error) {
	if _, err := s.stores.Participants.GetParticipant(ctx, nil, participantID); err != nil {
		return nil, err
	}
	return s.stores.Teams.TeamsOwnedBy(ctx, nil, year, participantID)
}

type RoundSummary struct {
	Round    bracket.Round `json:"round"`
	Name     string        `json:"name"`
	Total    int           `json:"total"`
	Final    int           `json:"final"`
	Complete bool          `json:"complete"`
}

func (s *QueryService) RoundStatus(ctx context.Context, year int) ([]RoundSummary, error) {
	games, err := s.stores.Games.ListGames(ctx, nil, year, store.GameFilter{})
	if err != nil {
		return nil, err
	}

	counts := make(map[bracket.Round]*RoundSummary, len(bracket.Rounds))
	summaries := make([]RoundSummary, len(bracket.Rounds))
	for i, r := range bracket.Rounds {
		summaries[i] = RoundSummary{Round: r, Name: r.String()}
		counts[r] = &summaries[i]
	}
	for _, g := range games {
		sum, ok := counts[g.Round]
		if !ok {
			continue
		}
		sum.Total++
		if g.IsFinal() {
			sum.Final++
		}
	}
	for i := range summaries {
		summaries[i].Complete = summaries[i].Total > 0 && summaries[i].Final == summaries[i].Total
	}
	return summaries, nil
}

type Standing struct {
	Participant  bracket.Participant `json:"participant"`
	InitialTeams int                 `json:"initial_teams"`
	Owned        int                 `json:"owned"`
	Alive        int                 `json:"alive"`
	AliveTeams   []bracket.Team      `json:"alive_teams"`
	Champion     bool                `json:"champion"`
}

// Standings ranks participants by the teams they own that are still alive,
// then by teams owned.
func (s *QueryService) Standings(ctx context.Context, year int) ([]Standing, error) {
	participants, err := s.stores.Participants.ListParticipants(ctx, nil)
	if err != nil {
		return nil, err
	}
	teams, err := s.stores.Teams.ListTeams(ctx, nil, year)
	if err != nil {
		return nil, err
	}
	games, err := s.stores.Games.ListGames(ctx, nil, year, store.GameFilter{Status: bracket.GameFinal})
	if err != nil {
		return nil, err
	}
	tournament, err := s.stores.Tournaments.GetTournament(ctx, nil, year)
	if err != nil {
		return nil, err
	}

	eliminated := Eliminated(games)

	byID := make(map[uuid.UUID]*Standing, len(participants))
	standings := make([]Standing, len(participants))
	for i, p := range participants {
		standings[i] = Standing{Participant: p, AliveTeams: []bracket.Team{}}
		byID[p.ID] = &standings[i]
	}

	for _, t := range teams {
		if t.InitialOwnerID != nil {
			if st, ok := byID[*t.InitialOwnerID]; ok {
				st.InitialTeams++
			}
		}
		if t.CurrentOwnerID == nil {
			continue
		}
		st, ok := byID[*t.CurrentOwnerID]
		if !ok {
			continue
		}
		st.Owned++
		if !eliminated[t.ID] {
			st.Alive++
			st.AliveTeams = append(st.AliveTeams, t)
		}
	}

	if tournament.ChampionOwnerID != nil {
		if st, ok := byID[*tournament.ChampionOwnerID]; ok {
			st.Champion = true
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Champion != b.Champion {
			return a.Champion
		}
		if a.Alive != b.Alive {
			return a.Alive > b.Alive
		}
		if a.Owned != b.Owned {
			return a.Owned > b.Owned
		}
		return a.Participant.Name < b.Participant.Name
	})
	return standings, nil
}

// Eliminated collects the losing team of every final game.
func Eliminated(games []bracket.Game) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool)
	for _, g := range games {
		if !g.IsFinal() || g.TeamWinner == nil {
			continue
		}
		if loser := g.TeamIn(g.TeamWinner.Other()); loser != nil {
			out[*loser] = true
		}
	}
	return out
}

// BracketData is everything needed to draw or export one year.
type BracketData struct {
	Tournament   *bracket.Tournament
	Games        []bracket.Game
	Teams        map[uuid.UUID]bracket.Team
	Participants map[uuid.UUID]bracket.Participant
}

func (s *QueryService) Bracket(ctx context.Context, year int) (*BracketData, error) {
	tournament, err := s.stores.Tournaments.GetTournament(ctx, nil, year)
	if err != nil {
		return nil, err
	}
	games, err := s.stores.Games.ListGames(ctx, nil, year, store.GameFilter{})
	if err != nil {
		return nil, err
	}
	teams, err := s.stores.Teams.ListTeams(ctx, nil, year)
	if err != nil {
		return nil, err
	}
	participants, err := s.stores.Participants.ListParticipants(ctx, nil)
	if err != nil {
		return nil, err
	}

	data := &BracketData{
		Tournament:   tournament,
		Games:        games,
		Teams:        make(map[uuid.UUID]bracket.Team, len(teams)),
		Participants: make(map[uuid.UUID]bracket.Participant, len(participants)),
	}
	for _, t := range teams {
		data.Teams[t.ID] = t
	}
	for _, p := range participants {
		data.Participants[p.ID] = p
	}
	return data, nil
}
