package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pickuphub/pickuphub/handlers"
	"github.com/pickuphub/pickuphub/middleware"
)

type Handlers struct {
	Match      *handlers.MatchHandler
	Tournament *handlers.TournamentHandler
	Dashboard  *handlers.DashboardHandler
	WebSocket  *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.ListMatchesHandler)
		r.Get("/{matchID}", h.Match.GetMatchHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", h.Match.CreateMatchHandler)
			r.Post("/{matchID}/join", h.Match.JoinMatchHandler)
			r.Post("/{matchID}/leave", h.Match.LeaveMatchHandler)
			r.Patch("/{matchID}/status", h.Match.UpdateMatchStatusHandler)
			r.Put("/{matchID}/score", h.Match.UpdateScoreHandler)
			r.Post("/{matchID}/cancel", h.Match.CancelMatchHandler)
			r.Delete("/{matchID}", h.Match.DeleteMatchHandler)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListTournamentsHandler)
		r.Get("/{tournamentID}", h.Tournament.GetTournamentHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", h.Tournament.CreateTournamentHandler)
			r.Put("/{tournamentID}", h.Tournament.UpdateTournamentHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteTournamentHandler)
			r.Post("/{tournamentID}/join", h.Tournament.JoinTournamentHandler)
			r.Post("/{tournamentID}/leave", h.Tournament.LeaveTournamentHandler)
			r.Post("/{tournamentID}/start", h.Tournament.StartTournamentHandler)
			r.Post("/{tournamentID}/cancel", h.Tournament.CancelTournamentHandler)
			r.Post("/{tournamentID}/bracket/{bracketMatchID}/advance", h.Tournament.AdvanceBracketHandler)
			r.Post("/{tournamentID}/banner", h.Tournament.UploadBannerHandler)
		})
	})

	router.Get("/dashboard/stats", h.Dashboard.GetStatsHandler)

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
