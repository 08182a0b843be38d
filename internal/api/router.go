package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/authmail/authmail-be/internal/api/handlers"
	"github.com/authmail/authmail-be/internal/auth"
	"github.com/authmail/authmail-be/internal/config"
	"github.com/authmail/authmail-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, authService services.AuthServiceProvider, userService services.UserServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sessionAuth := auth.Middleware([]byte(cfg.JWTSecret))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("App working fine"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/send-reset-otp", authHandler.SendResetOTP)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(sessionAuth)
			r.Post("/send-verify-otp", authHandler.SendVerifyOTP)
			r.Post("/verify-account", authHandler.VerifyAccount)
			r.Get("/is-auth", authHandler.IsAuth)
		})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(sessionAuth)
		r.Get("/data", userHandler.GetData)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Route not found"}`))
	})

	return r
}
