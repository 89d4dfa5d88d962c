package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"livequiz/internal/cache"
	"livequiz/internal/repository"
	"livequiz/internal/service"
	"livequiz/internal/transport/rest/handler"
	"livequiz/internal/transport/rest/middleware"
	"livequiz/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	RegistryService *service.RegistryService
	GameService     *service.GameService
	QuizRepo        repository.QuizRepo
	QuestionRepo    repository.QuestionRepo
	Leaderboard     cache.LeaderboardCache
	WSHub           *ws.Hub
	WSRelay         *ws.Relay
	PublicBaseURL   string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.QuizRepo, c.QuestionRepo)
	sessionHandler := handler.NewSessionHandler(c.RegistryService, c.GameService, c.AuthService, c.Leaderboard, c.PublicBaseURL)
	wsHandler := ws.NewHandler(c.WSHub, c.WSRelay, c.AuthService, c.GameService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{url}/join", sessionHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{url}/qr", sessionHandler.QR).Methods("GET")
	v1.HandleFunc("/sessions/{url}/results", sessionHandler.Results).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{url}/leaderboard", sessionHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/sessions/{url}", wsHandler.ServeWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// User routes (require user auth)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/quizzes", quizHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/quizzes", quizHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/quizzes/{quizId}", quizHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/quizzes/{quizId}/questions", quizHandler.CreateQuestion).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")

	// Player routes (user token or session-scoped player token)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/sessions/{url}", sessionHandler.Get).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/sessions/{url}/question/current", sessionHandler.CurrentQuestion).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
