package routes

import (
	"net/http"
	"time"

	"communityapp/controllers/auth"
	"communityapp/controllers/users"
	"communityapp/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers all user-facing routes on the given subrouter
func UsersRoutes(api *mux.Router) {
	// Login/register limiter: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Session limiter: per-user sliding windows with per-route categories
	userLimiter := middleware.NewUserRateLimiter(60)

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)
	api.Handle("/logout-all", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutAllHandler)))).Methods(http.MethodPost)

	// Profile
	api.Handle("/users/me", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.MeHandler)))).Methods(http.MethodGet)
	api.Handle("/users/avatar", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UploadAvatarHandler)))).Methods(http.MethodPost)

	// Communities
	api.Handle("/communities", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CreateCommunityHandler)))).Methods(http.MethodPost)
	api.Handle("/communities", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.ListCommunitiesHandler)))).Methods(http.MethodGet)
	api.Handle("/communities/join", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.JoinCommunityHandler)))).Methods(http.MethodPost)
	api.Handle("/communities/{id}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CommunityDetailHandler)))).Methods(http.MethodGet)
	api.Handle("/communities/{id}/leave", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.LeaveCommunityHandler)))).Methods(http.MethodPost)
	api.Handle("/communities/{id}/streaks", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpdateStreakSettingsHandler)))).Methods(http.MethodPut)
	api.Handle("/communities/{id}/modules", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.AttachModuleHandler)))).Methods(http.MethodPost)
	api.Handle("/communities/{id}/modules/{moduleId}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpdateAttachmentHandler)))).Methods(http.MethodPut)
	api.Handle("/communities/{id}/leaderboard", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.LeaderboardHandler)))).Methods(http.MethodGet)

	// Task completions
	api.Handle("/tasks", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.CompleteTaskHandler)))).Methods(http.MethodPost)
	api.Handle("/users/tasks", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.TaskHistoryHandler)))).Methods(http.MethodGet)
}
