package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	authController *controllers.AuthController,
	wsHandler http.Handler,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/join", auth(eventController.JoinEvent))

	// Real-time event stream
	mux.Handle("GET /ws", wsHandler)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
