package api

import (
	"github.com/gorilla/mux"

	"github.com/autofeedr/autofeedr/internal/config"
	"github.com/autofeedr/autofeedr/internal/db"
	"github.com/autofeedr/autofeedr/internal/repository/sqlite"
	"github.com/autofeedr/autofeedr/internal/secrets"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, conn *db.DB, box *secrets.Box) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(conn, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, box, cfg.JWTSecret, cfg.TokenDuration)
	accountsHandler := NewAccountsHandler(repo, box)
	schedulesHandler := NewSchedulesHandler(repo, repo, cfg.DefaultTimezone, cfg.Worker.MaxAttempts)
	githubHandler := NewGitHubHandler(repo, box)
	leetcodeHandler := NewLeetCodeHandler(repo, repo, cfg.DefaultTimezone, cfg.LeetCode.DefaultMaxAttempts)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/users/me/credentials", authHandler.UpdateCredentials).Methods("PUT")

	// LinkedIn account endpoints
	apiV1.HandleFunc("/accounts", accountsHandler.CreateAccount).Methods("POST")
	apiV1.HandleFunc("/accounts", accountsHandler.ListAccounts).Methods("GET")
	apiV1.HandleFunc("/accounts/{id}", accountsHandler.UpdateAccount).Methods("PUT")
	apiV1.HandleFunc("/accounts/{id}", accountsHandler.DeleteAccount).Methods("DELETE")

	// Content schedule + job endpoints
	apiV1.HandleFunc("/schedules", schedulesHandler.CreateSchedule).Methods("POST")
	apiV1.HandleFunc("/schedules", schedulesHandler.ListSchedules).Methods("GET")
	apiV1.HandleFunc("/schedules/{id}", schedulesHandler.UpdateSchedule).Methods("PUT")
	apiV1.HandleFunc("/jobs", schedulesHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/jobs/publish-now", schedulesHandler.PublishNow).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}/logs", schedulesHandler.GetJobLogs).Methods("GET")

	// GitHub endpoints
	apiV1.HandleFunc("/github/accounts", githubHandler.CreateAccount).Methods("POST")
	apiV1.HandleFunc("/github/accounts", githubHandler.ListAccounts).Methods("GET")
	apiV1.HandleFunc("/github/accounts/{id}", githubHandler.DeleteAccount).Methods("DELETE")
	apiV1.HandleFunc("/github/repositories", githubHandler.CreateRepository).Methods("POST")
	apiV1.HandleFunc("/github/repositories", githubHandler.ListRepositories).Methods("GET")
	apiV1.HandleFunc("/github/repositories/{id}", githubHandler.DeleteRepository).Methods("DELETE")
	apiV1.HandleFunc("/github/repositories/{id}/completed", leetcodeHandler.ListCompletedProblems).Methods("GET")

	// LeetCode endpoints
	apiV1.HandleFunc("/leetcode/schedules", leetcodeHandler.CreateSchedule).Methods("POST")
	apiV1.HandleFunc("/leetcode/schedules", leetcodeHandler.ListSchedules).Methods("GET")
	apiV1.HandleFunc("/leetcode/schedules/{id}", leetcodeHandler.UpdateSchedule).Methods("PUT")
	apiV1.HandleFunc("/leetcode/jobs", leetcodeHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/leetcode/jobs/run-now", leetcodeHandler.RunNow).Methods("POST")
	apiV1.HandleFunc("/leetcode/jobs/{id}/logs", leetcodeHandler.GetJobLogs).Methods("GET")
	apiV1.HandleFunc("/prompts/defaults", leetcodeHandler.DefaultPrompts).Methods("GET")

	return r
}
