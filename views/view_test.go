package views

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/service"
	"github.com/AdamBeresnev/spread-pool/internal/utils"
)

func sampleBracket() *service.BracketData {
	alice := bracket.Participant{ID: uuid.New(), Name: "Alice <3"}
	bob := bracket.Participant{ID: uuid.New(), Name: "Bob"}
	data := &service.BracketData{
		Tournament:   &bracket.Tournament{Year: 2024, Status: bracket.TournamentStarted},
		Teams:        map[uuid.UUID]bracket.Team{},
		Participants: map[uuid.UUID]bracket.Participant{alice.ID: alice, bob.ID: bob},
		Games:        bracket.Layout(2024),
	}
	for i := range data.Games {
		g := &data.Games[i]
		if g.Round != bracket.RoundOf64 || g.Region != bracket.East || g.Position != 0 {
			continue
		}
		duke := bracket.Team{ID: uuid.New(), Name: "Duke", Seed: 1, Region: bracket.East}
		nsu := bracket.Team{ID: uuid.New(), Name: "Norfolk State", Seed: 16, Region: bracket.East}
		data.Teams[duke.ID], data.Teams[nsu.ID] = duke, nsu
		g.Fill(bracket.SlotA, duke.ID, &alice.ID)
		g.Fill(bracket.SlotB, nsu.ID, &bob.ID)

		winner, covering := bracket.SlotA, bracket.SlotB
		g.ScoreA, g.ScoreB, g.Spread = utils.Ptr(73), utils.Ptr(70), utils.Ptr(10.0)
		g.Status, g.TeamWinner, g.OwnerWinner, g.OwnerWinnerID = bracket.GameFinal, &winner, &covering, &bob.ID
	}
	return data
}

func TestPrepareBracketData(t *testing.T) {
	view := PrepareBracketData(sampleBracket(), nil)

	assert.Equal(t, 2024, view.Year)
	require.Len(t, view.Regions, 4)
	for i, region := range view.Regions {
		assert.Equal(t, bracket.Regions[i], region.Region)
		require.Len(t, region.Rounds, 4)
		assert.Len(t, region.Rounds[0].Games, 8)
		assert.Len(t, region.Rounds[3].Games, 1)
	}
	require.Len(t, view.National, 2)
	assert.Equal(t, bracket.FinalFour, view.National[0].Round)
	assert.Len(t, view.National[0].Games, 2)
	assert.Len(t, view.National[1].Games, 1)

	first := view.Regions[0].Rounds[0].Games[0]
	assert.Equal(t, "Duke", first.A.Team)
	assert.True(t, first.A.Winner)
	assert.False(t, first.A.Covering)
	assert.Equal(t, "Bob", first.B.Owner)
	assert.True(t, first.B.Covering)

	for i, g := range view.Regions[1].Rounds[0].Games {
		assert.Equal(t, "", g.A.Team)
		assert.Contains(t, g.Label, "West Round of 64 #")
		assert.Contains(t, g.Label, string(rune('1'+i)))
	}
}

func TestBracketPage(t *testing.T) {
	standings := []service.Standing{{Participant: bracket.Participant{Name: "Alice <3"}, Owned: 1, Alive: 1}}
	view := PrepareBracketData(sampleBracket(), standings)

	var buf bytes.Buffer
	require.NoError(t, BracketPage(view).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<title>2024 Pool</title>")
	assert.Contains(t, html, "Norfolk State")
	assert.Contains(t, html, "A -10")
	assert.Contains(t, html, "Alice &lt;3")
	assert.NotContains(t, html, "Alice <3")
	assert.Contains(t, html, `class="slot winner"`)
	assert.Contains(t, html, `class="slot covering"`)
}

func TestBracketPageCards(t *testing.T) {
	standings := []service.Standing{
		{Participant: bracket.Participant{Name: "Bob"}, Owned: 1, Alive: 1, Champion: true},
		{Participant: bracket.Participant{Name: "Alice <3"}},
	}
	view := PrepareBracketData(sampleBracket(), standings)
	first := view.Regions[0].Rounds[0].Games[0]

	var buf bytes.Buffer
	require.NoError(t, BracketPage(view).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, fmt.Sprintf(`<div class="game final" id="game-%s">`, first.ID))
	assert.Contains(t, html, `<span class="seed">16</span>`)
	assert.Contains(t, html, `<span class="team">TBD</span>`)
	assert.Contains(t, html, `<tr class="champion"><td>1</td><td>Bob</td>`)
	assert.Contains(t, html, `<tr class=""><td>2</td><td>Alice &lt;3</td>`)
	assert.Contains(t, html, `<h2>National</h2>`)
}

func TestRender(t *testing.T) {
	view := PrepareBracketData(sampleBracket(), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/years/2024", nil)
	require.NoError(t, Render(rec, req, BracketPage(view)))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<!doctype html>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec = httptest.NewRecorder()
	err := Render(rec, req.WithContext(ctx), BracketPage(view))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Body.String())
}

func TestFormatSpread(t *testing.T) {
	assert.Equal(t, "no line", FormatSpread(nil))
	assert.Equal(t, "pick'em", FormatSpread(utils.Ptr(0.0)))
	assert.Equal(t, "A -3.5", FormatSpread(utils.Ptr(3.5)))
	assert.Equal(t, "B -7", FormatSpread(utils.Ptr(-7.0)))
}
