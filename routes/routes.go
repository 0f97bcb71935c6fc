package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // алиас, чтобы не конфликтовать с нашим middleware
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Match        *handlers.MatchHandler
	Standings    *handlers.StandingsHandler
	WebSocket    *handlers.WebSocketHandler
	Health       *handlers.HealthHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// websocket не проходит через таймаут: соединение живёт долго
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		// Публичное чтение
		r.Get("/tournaments", h.Tournament.ListHandler)
		r.Get("/tournaments/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/tournaments/{tournamentID}/overview", h.Tournament.OverviewHandler)
		r.Get("/tournaments/{tournamentID}/registrations", h.Registration.ListRegistrations)
		r.Get("/tournaments/{tournamentID}/matches", h.Match.ListByTournament)
		r.Get("/tournaments/{tournamentID}/leaderboard", h.Standings.TournamentLeaderboard)
		r.Get("/matches/{matchID}", h.Match.GetMatch)
		r.Get("/matches/{matchID}/reports", h.Match.ListReports)
		r.Get("/leaderboard", h.Standings.Leaderboard)

		// Требуют токен; роли проверяют сервисы
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/tournaments", h.Tournament.CreateHandler)
			r.Patch("/tournaments/{tournamentID}/status", h.Tournament.UpdateStatusHandler)
			r.Post("/tournaments/{tournamentID}/archive", h.Tournament.ArchiveHandler)
			r.Post("/tournaments/{tournamentID}/bracket", h.Tournament.GenerateBracketHandler)

			r.Post("/tournaments/{tournamentID}/registrations", h.Registration.RegisterTeam)
			r.Delete("/tournaments/{tournamentID}/registrations/{teamID}", h.Registration.Withdraw)

			r.Post("/matches/{matchID}/reports", h.Match.SubmitReport)
			r.Put("/matches/{matchID}/result", h.Match.CorrectResult)
			r.Post("/reports/{reportID}/confirm", h.Match.ConfirmReport)
			r.Post("/reports/{reportID}/reject", h.Match.RejectReport)
			r.Post("/reports/{reportID}/finalize", h.Match.FinalizeReport)

			r.Get("/admin/standings/audit", h.Standings.Audit)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found","kind":"not_found"}` + "\n"))
	})
}
