package routes

import (
	"net/http"
	"time"

	"communityapp/controllers/admins"
	"communityapp/middleware"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	// Public admin routes
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.Login))).Methods(http.MethodPost)

	// Protected admin routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// Module catalog management
	adminRouter.Handle("/modules", http.HandlerFunc(admins.ListModules)).Methods(http.MethodGet)
	adminRouter.Handle("/modules", http.HandlerFunc(admins.CreateModule)).Methods(http.MethodPost)
	adminRouter.Handle("/modules/{id}", http.HandlerFunc(admins.UpdateModule)).Methods(http.MethodPut)
}
