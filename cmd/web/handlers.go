package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/httputil"
	"github.com/AdamBeresnev/spread-pool/internal/middleware"
	"github.com/AdamBeresnev/spread-pool/internal/store"
	"github.com/AdamBeresnev/spread-pool/views"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func yearParam(r *http.Request) (int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		return 0, bracket.Invalid("year", "must be a positive number")
	}
	return year, nil
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, bracket.Invalid("id", "must be a UUID")
	}
	return id, nil
}

func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		httputil.InternalServerError(w, "Database ping failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	if !middleware.TokenMatches(r.Form.Get("token"), app.cfg.HTTP.AdminToken) {
		app.logger.Warn("Admin login rejected", slog.String("remote", r.RemoteAddr))
		httputil.Unauthorized(w)
		return
	}
	if err := app.sessions.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	app.sessions.Put(r.Context(), middleware.SessionAdminKey, true)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessions.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to end session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) bracketPage(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid year", err)
		return
	}
	data, err := app.query.Bracket(r.Context(), year)
	if err != nil {
		httputil.HandleError(w, "Failed to load bracket", err)
		return
	}
	standings, err := app.query.Standings(r.Context(), year)
	if err != nil {
		httputil.HandleError(w, "Failed to load standings", err)
		return
	}
	if err := views.Render(w, r, views.BracketPage(views.PrepareBracketData(data, standings))); err != nil {
		app.logger.Error("Failed to render bracket", slog.Any("error", err))
	}
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.query.Tournaments(r.Context())
	if err != nil {
		httputil.HandleError(w, "Failed to list tournaments", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournaments)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid year", err)
		return
	}
	t, err := app.query.Tournament(r.Context(), year)
	if err != nil {
		httputil.HandleError(w, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (app *application) listGames(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid year", err)
		return
	}

	var f store.GameFilter
	q := r.URL.Query()
	if v := q.Get("round"); v != "" {
		if f.Round, err = bracket.ParseRound(v); err != nil {
			httputil.HandleError(w, "Invalid round", err)
			return
		}
	}
	if v := q.Get("region"); v != "" {
		if f.Region, err = bracket.ParseRegion(v); err != nil {
			httputil.HandleError(w, "Invalid region", err)
			return
		}
	}
	if v := q.Get("status"); v != "" {
		if f.Status, err = bracket.ParseGameStatus(v); err != nil {
			httputil.HandleError(w, "Invalid status", err)
			return
		}
	}

	games, err := app.query.Games(r.Context(), year, f)
	if err != nil {
		httputil.HandleError(w, "Failed to list games", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, games)
}

func (app *application) roundStatus(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid year", err)
		return
	}
	rounds, err := app.query.RoundStatus(r.Context(), year)
	if err != nil {
		httputil.HandleError(w, "Failed to get round status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rounds)
}

func (app *application) standings(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid year", err)
		return
	}
	standings, err := app.query.Standings(r.Context(), year)
	if err != nil {
		httputil.HandleError(w, "Failed to get standings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, standings)
}

func (app *application) teamsOwnedBy(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid year", err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid participant", err)
		return
	}
	teams, err := app.query.TeamsOwnedBy(r.Context(), year, id)
	if err != nil {
		httputil.HandleError(w, "Failed to list teams", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, teams)
}

func (app *application) getGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid game", err)
		return
	}
	game, err := app.query.Game(r.Context(), id)
	if err != nil {
		httputil.HandleError(w, "Failed to get game", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, game)
}

func (app *application) liveLeader(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid game", err)
		return
	}
	lead, err := app.progression.LiveLeader(r.Context(), id)
	if err != nil {
		httputil.HandleError(w, "Failed to get live leader", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lead)
}

func (app *application) ownershipHistory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid team", err)
		return
	}
	history, err := app.ownership.History(r.Context(), id)
	if err != nil {
		httputil.HandleError(w, "Failed to get ownership history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

// Scores are pointers so an omitted score is rejected instead of read as 0.
type finalizeRequest struct {
	ScoreA *int     `json:"score_a"`
	ScoreB *int     `json:"score_b"`
	Spread *float64 `json:"spread"`
}

func requireScores(a, b *int) error {
	if a == nil {
		return bracket.Invalid("score_a", "missing")
	}
	if b == nil {
		return bracket.Invalid("score_b", "missing")
	}
	return nil
}

func (app *application) finalizeGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid game", err)
		return
	}
	var in finalizeRequest
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.HandleError(w, "Invalid finalize request", err)
		return
	}
	if err := requireScores(in.ScoreA, in.ScoreB); err != nil {
		httputil.HandleError(w, "Invalid finalize request", err)
		return
	}
	res, err := app.progression.Finalize(r.Context(), id, bracket.FinalizeInput{
		ScoreA: *in.ScoreA,
		ScoreB: *in.ScoreB,
		Spread: in.Spread,
	})
	if err != nil {
		httputil.HandleError(w, "Failed to finalize game", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type spreadRequest struct {
	Spread *float64 `json:"spread"`
}

func (app *application) setSpread(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid game", err)
		return
	}
	var in spreadRequest
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.HandleError(w, "Invalid spread request", err)
		return
	}
	game, err := app.progression.SetSpread(r.Context(), id, in.Spread)
	if err != nil {
		httputil.HandleError(w, "Failed to set spread", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, game)
}

type liveScoreRequest struct {
	ScoreA *int `json:"score_a"`
	ScoreB *int `json:"score_b"`
}

func (app *application) updateLiveScore(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid game", err)
		return
	}
	var in liveScoreRequest
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.HandleError(w, "Invalid live score request", err)
		return
	}
	if err := requireScores(in.ScoreA, in.ScoreB); err != nil {
		httputil.HandleError(w, "Invalid live score request", err)
		return
	}
	game, err := app.progression.UpdateLiveScore(r.Context(), id, *in.ScoreA, *in.ScoreB)
	if err != nil {
		httputil.HandleError(w, "Failed to update live score", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, game)
}

func (app *application) simulateGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid game", err)
		return
	}
	res, err := app.simulation.SimulateGame(r.Context(), id)
	if err != nil {
		httputil.HandleError(w, "Failed to simulate game", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

type correctionRequest struct {
	OwnerID uuid.UUID `json:"owner_id"`
	Note    string    `json:"note"`
}

func (app *application) correctOwner(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httputil.HandleError(w, "Invalid team", err)
		return
	}
	var in correctionRequest
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.HandleError(w, "Invalid correction request", err)
		return
	}
	entry, err := app.ownership.Correct(r.Context(), id, in.OwnerID, in.Note)
	if err != nil {
		httputil.HandleError(w, "Failed to correct owner", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}
