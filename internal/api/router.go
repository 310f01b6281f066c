package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/skycastlabs/skycast-api/internal/api/handler"
	custommiddleware "github.com/skycastlabs/skycast-api/internal/api/middleware"
	"github.com/skycastlabs/skycast-api/internal/config"
	mongorepo "github.com/skycastlabs/skycast-api/internal/repository/mongo"
	"github.com/skycastlabs/skycast-api/internal/security"
	"github.com/skycastlabs/skycast-api/internal/service"
	"github.com/skycastlabs/skycast-api/internal/weather"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *mongorepo.DB, users *mongorepo.UserRepository) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handler.ExposeInternalErrors(!cfg.IsProduction())

	// Security components
	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Services
	userService := service.NewUserService(users, tokens)
	weatherService := weather.NewService(weather.NewClient(cfg.Weather))

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	weatherHandler := handler.NewWeatherHandler(weatherService)

	authMiddleware := custommiddleware.NewAuthMiddleware(tokens)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Post("/login", userHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)

				r.Get("/profile", userHandler.GetProfile)
				r.Put("/profile", userHandler.UpdateProfile)
				r.Post("/history", userHandler.AddHistory)
			})
		})

		r.Route("/weather", func(r chi.Router) {
			r.Get("/coordinates", weatherHandler.Coordinates)
			r.Get("/city", weatherHandler.City)
			r.Get("/forecast", weatherHandler.Forecast)
		})
	})

	return r
}
