package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/tabletennis/handlers"
)

const requestTimeout = 30 * time.Second

func SetupRoutes(
	router *chi.Mux,
	corsOrigins []string,
	healthHandler *handlers.HealthHandler,
	associationHandler *handlers.AssociationHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	categoryHandler *handlers.CategoryHandler,
	teamHandler *handlers.TeamHandler,
	groupHandler *handlers.GroupHandler,
	matchHandler *handlers.MatchHandler,
	bracketHandler *handlers.BracketHandler,
	enrollmentHandler *handlers.EnrollmentHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(requestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/healthz", healthHandler.Health)

	router.Route("/api", func(r chi.Router) {
		r.Route("/associations", func(r chi.Router) {
			r.Post("/", associationHandler.CreateAssociation)
			r.Get("/", associationHandler.ListAssociations)
			r.Route("/{associationID}", func(r chi.Router) {
				r.Get("/", associationHandler.GetAssociationByID)
				r.Put("/", associationHandler.UpdateAssociation)
				r.Delete("/", associationHandler.DeleteAssociation)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Post("/", playerHandler.CreatePlayer)
			r.Get("/", playerHandler.ListPlayers)
			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", playerHandler.GetPlayerByID)
				r.Put("/", playerHandler.UpdatePlayer)
				r.Delete("/", playerHandler.DeletePlayer)
				r.Put("/photo", playerHandler.UploadPlayerPhoto)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", tournamentHandler.CreateTournament)
			r.Get("/", tournamentHandler.ListTournaments)
			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetTournamentByID)
				r.Put("/", tournamentHandler.UpdateTournament)
				r.Delete("/", tournamentHandler.DeleteTournament)
				r.Get("/overview", tournamentHandler.GetTournamentOverview)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/", categoryHandler.ListCategories)
			r.Route("/{categoryID}", func(r chi.Router) {
				r.Get("/", categoryHandler.GetCategoryByID)
				r.Put("/", categoryHandler.UpdateCategory)
				r.Delete("/", categoryHandler.DeleteCategory)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.CreateTeam)
			r.Get("/", teamHandler.ListTeams)
			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", teamHandler.GetTeamByID)
				r.Put("/", teamHandler.UpdateTeam)
				r.Delete("/", teamHandler.DeleteTeam)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", groupHandler.CreateGroup)
			r.Get("/", groupHandler.ListGroups)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", groupHandler.GetGroupByID)
				r.Put("/", groupHandler.UpdateGroup)
				r.Delete("/", groupHandler.DeleteGroup)
				r.Post("/members", groupHandler.AddMember)
				r.Get("/members", groupHandler.ListMembers)
				r.Delete("/members/{playerID}", groupHandler.RemoveMember)
				r.Post("/round-robin", groupHandler.GenerateRoundRobin)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchHandler.CreateMatch)
			r.Get("/", matchHandler.ListMatches)
			r.Route("/{matchID}", func(r chi.Router) {
				r.Get("/", matchHandler.GetMatchByID)
				r.Put("/", matchHandler.UpdateMatch)
				r.Delete("/", matchHandler.DeleteMatch)
				r.Put("/schedule", matchHandler.ScheduleMatch)
				r.Get("/outcome", matchHandler.GetMatchOutcome)
				r.Post("/advance", matchHandler.AdvanceWinner)
				r.Post("/complete", matchHandler.CompleteMatch)
				r.Post("/sets", matchHandler.CreateSetResult)
				r.Get("/sets", matchHandler.ListSetResults)
			})
		})

		r.Route("/sets/{setID}", func(r chi.Router) {
			r.Put("/", matchHandler.UpdateSetResult)
			r.Delete("/", matchHandler.DeleteSetResult)
		})

		r.Route("/brackets", func(r chi.Router) {
			r.Post("/elimination", bracketHandler.GenerateElimination)
			r.Post("/elimination/from-enrollments", bracketHandler.GenerateEliminationFromEnrollments)
			r.Post("/next-round", bracketHandler.GenerateNextRound)
		})

		r.Route("/enrollments", func(r chi.Router) {
			r.Post("/", enrollmentHandler.EnrollPlayer)
			r.Get("/", enrollmentHandler.ListEnrollments)
			r.Delete("/", enrollmentHandler.WithdrawPlayer)
			r.Post("/doubles", enrollmentHandler.EnrollTeam)
			r.Get("/doubles", enrollmentHandler.ListTeamEnrollments)
			r.Delete("/doubles", enrollmentHandler.WithdrawTeam)
		})
	})
}
