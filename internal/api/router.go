package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/user-directory-be/internal/api/handlers"
	"github.com/isdelr/user-directory-be/internal/services"
	"github.com/isdelr/user-directory-be/internal/storage"
	"github.com/isdelr/user-directory-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	eventService services.EventServiceProvider,
	uploads *storage.UploadStore,
	stats handlers.StatsProvider,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Browsers may load the dashboard page from arbitrary origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, uploads)
	eventHandler := handlers.NewEventHandler(eventService)
	statsHandler := handlers.NewStatsHandler(stats)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ws", wsHandler.Serve)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.Put("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
			})
		})

		r.Get("/events", eventHandler.GetRecent)
		r.Get("/stats", statsHandler.Get)
	})

	// Machine-readable API description.
	r.Get("/api-docs", serveAPIDocs)

	// Uploaded photos are served statically from the upload area.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	return r
}
