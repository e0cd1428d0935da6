package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/bracket-console/handlers"
	"github.com/Dosada05/bracket-console/middleware"
)

type Deps struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Metrics        http.Handler

	BracketHandler   *handlers.BracketHandler
	MatchHandler     *handlers.MatchHandler
	WebSocketHandler *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, deps Deps) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.SessionHeaderName},
		ExposedHeaders:   []string{middleware.SessionHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", handlers.Health)
	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// WebSocket соединения живут дольше таймаута обычных запросов.
	router.Get("/ws/tournaments/{tournamentID}", deps.WebSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(60 * time.Second))
		r.Use(middleware.Session)

		r.Get("/brackets", deps.BracketHandler.ListBrackets)

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/bracket", deps.BracketHandler.GetBracket)

			// Изменения только для администраторов
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(deps.JWTSecret))
				r.Use(middleware.Authorize(middleware.RoleAdmin))

				r.Post("/bracket/publish", deps.BracketHandler.Publish)
				r.Delete("/bracket/publish", deps.BracketHandler.Unpublish)

				r.Route("/matches/{matchID}", func(r chi.Router) {
					r.Post("/score", deps.MatchHandler.SubmitScore)
					r.Post("/advance", deps.MatchHandler.Advance)
					r.Delete("/advance", deps.MatchHandler.LeaveAdvance)
				})
			})
		})
	})
}
