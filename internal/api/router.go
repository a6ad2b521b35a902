package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jcourtner/taskdeck-be/internal/api/handlers"
	"github.com/jcourtner/taskdeck-be/internal/auth"
	"github.com/jcourtner/taskdeck-be/internal/services"
	ws "github.com/jcourtner/taskdeck-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	corsOrigin string,
	tokens *auth.TokenManager,
	hub *ws.Hub,
	userService services.UserServiceProvider,
	todoService services.TodoServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	userHandler := handlers.NewUserHandler(userService)
	todoHandler := handlers.NewTodoHandler(todoService)
	eventHandler := handlers.NewEventHandler(eventService)
	systemHandler := handlers.NewSystemHandler()
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/system/health", systemHandler.Health)

		// Everything else requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens, userService))

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", todoHandler.List)
				r.Post("/", todoHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", todoHandler.Get)
					r.Put("/", todoHandler.Update)
					r.Delete("/", todoHandler.Delete)
					r.Patch("/toggle", todoHandler.Toggle)
				})
			})

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", userHandler.GetMe)
				r.Put("/password", userHandler.ChangePassword)
				r.Delete("/", userHandler.DeleteMe)
			})

			r.Get("/events", eventHandler.GetRecent)
			r.Get("/ws", wsHandler.Serve)
		})
	})

	return r
}
