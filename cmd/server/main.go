package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livequiz/internal/cache"
	"livequiz/internal/config"
	"livequiz/internal/repository"
	"livequiz/internal/service"
	"livequiz/internal/transport/rest"
	"livequiz/internal/transport/ws"

	_ "livequiz/docs"
)

// @title Live Quiz Session API
// @version 1.0
// @description Real-time quiz session engine: hosts run quizzes, players join by slug, WebSocket drives the game.
// @host localhost:8080
// @BasePath /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories
	userRepo := repository.NewUserRepo(db)
	quizRepo := repository.NewQuizRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	submissionRepo := repository.NewSubmissionRepo(db)

	idxCtx, idxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer idxCancel()
	if err := sessionRepo.EnsureIndexes(idxCtx); err != nil {
		log.Fatal("Failed to create session indexes:", err)
	}
	if err := submissionRepo.EnsureIndexes(idxCtx); err != nil {
		log.Fatal("Failed to create submission indexes:", err)
	}

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Initialize WebSocket hub and signaling relay
	wsHub := ws.NewHub()
	wsRelay := ws.NewRelay()
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	registrySvc := service.NewRegistryService(sessionRepo, quizRepo, submissionRepo, sessionCache, leaderboard)
	gameSvc := service.NewGameService(sessionRepo, questionRepo, submissionRepo, sessionCache, leaderboard)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	gameSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		AuthService:     authSvc,
		RegistryService: registrySvc,
		GameService:     gameSvc,
		QuizRepo:        quizRepo,
		QuestionRepo:    questionRepo,
		Leaderboard:     leaderboard,
		WSHub:           wsHub,
		WSRelay:         wsRelay,
		PublicBaseURL:   cfg.PublicBaseURL,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/register")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/quizzes")
		log.Println("  POST/GET /v1/sessions")
		log.Println("  POST /v1/sessions/{url}/join")
		log.Println("  GET  /v1/sessions/{url}/qr")
		log.Println("  WS   /v1/ws/sessions/{url}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
