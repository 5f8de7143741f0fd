package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AdamBeresnev/spread-pool/internal/metrics"
	"github.com/AdamBeresnev/spread-pool/internal/middleware"
	"github.com/AdamBeresnev/spread-pool/views"
)

func newRouter(app *application, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", app.healthz)
	r.Handle("/metrics", metrics.Handler(reg))
	r.Handle("/static/*", http.FileServerFS(views.Static))

	r.Group(func(r chi.Router) {
		r.Use(app.sessions.LoadAndSave)
		r.Use(middleware.LoadAdmin(app.sessions, app.cfg.HTTP.AdminToken))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/years/"+itoa(app.cfg.Pool.Year), http.StatusFound)
		})
		r.Get("/years/{year}", app.bracketPage)

		r.Post("/admin/login", app.login)
		r.Post("/admin/logout", app.logout)

		r.Route("/api", func(r chi.Router) {
			r.Get("/years", app.listTournaments)
			r.Route("/years/{year}", func(r chi.Router) {
				r.Get("/", app.getTournament)
				r.Get("/games", app.listGames)
				r.Get("/rounds", app.roundStatus)
				r.Get("/standings", app.standings)
				r.Get("/participants/{id}/teams", app.teamsOwnedBy)
			})

			r.Get("/games/{id}", app.getGame)
			r.Get("/games/{id}/leader", app.liveLeader)
			r.Get("/teams/{id}/ownership", app.ownershipHistory)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/games/{id}/finalize", app.finalizeGame)
				r.Post("/games/{id}/spread", app.setSpread)
				r.Post("/games/{id}/live", app.updateLiveScore)
				r.Post("/games/{id}/simulate", app.simulateGame)
				r.Post("/teams/{id}/owner-corrections", app.correctOwner)
			})
		})
	})

	return r
}
