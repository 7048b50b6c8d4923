package router

import (
	"hrms-api/handler"
	"hrms-api/model"
	"net/http"
)

func NewRouter(authHandler *handler.AuthHandler, userHandler *handler.UserHandler, verifier handler.TokenVerifier) http.Handler {
	mux := http.NewServeMux()
	authenticated := handler.AuthMiddleware(verifier)
	adminOnly := func(next http.Handler) http.Handler {
		return authenticated(handler.RequireRoles(model.RoleAdmin)(next))
	}

	mux.HandleFunc("GET /health", handler.HealthCheck)

	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/logout", authenticated(handler.ErrorHandlingMiddleware(authHandler.Logout)))

	mux.Handle("GET /api/me", authenticated(handler.ErrorHandlingMiddleware(userHandler.Me)))
	mux.Handle("GET /api/hr/all", adminOnly(handler.ErrorHandlingMiddleware(userHandler.ListHRUsers)))
	mux.Handle("POST /api/hr/create", adminOnly(handler.ErrorHandlingMiddleware(userHandler.CreateHRUser)))
	mux.Handle("PUT /api/hr/update/{id}", adminOnly(handler.ErrorHandlingMiddleware(userHandler.UpdateHRUser)))
	mux.Handle("DELETE /api/hr/delete/{id}", adminOnly(handler.ErrorHandlingMiddleware(userHandler.DeleteHRUser)))
	mux.Handle("PUT /api/users/{id}/roles", adminOnly(handler.ErrorHandlingMiddleware(userHandler.UpdateUserRoles)))

	return handler.LoggingMiddleware(mux)
}
