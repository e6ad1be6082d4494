package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/messagely/messagely-go/internal/middleware"
	"github.com/messagely/messagely-go/internal/service"
)

// Services bundles what the routes call into.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Messages *service.MessageService
}

// NewRouter wires every route. Requests past the auth group carry the
// verified identity in their context.
func NewRouter(svc Services, verifier middleware.TokenVerifier, requestTimeout time.Duration) http.Handler {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users, svc.Messages)
	messageHandler := NewMessageHandler(svc.Messages)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(verifier))

			r.Get("/users", userHandler.HandleList)
			r.Get("/users/{username}", userHandler.HandleGet)
			r.Get("/users/{username}/from", userHandler.HandleListFrom)
			r.Get("/users/{username}/to", userHandler.HandleListTo)

			r.Post("/messages", messageHandler.HandleCreate)
			r.Get("/messages/{id}", messageHandler.HandleGet)
			r.Post("/messages/{id}/read", messageHandler.HandleMarkRead)
		})
	})

	return r
}
