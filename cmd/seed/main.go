package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"livequiz/internal/config"
	"livequiz/internal/model"
	"livequiz/internal/repository"
)

// Seeds a demo host account with one quiz so a fresh install has
// something to run a session from.
func main() {
	godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	userRepo := repository.NewUserRepo(db)
	quizRepo := repository.NewQuizRepo(db)
	questionRepo := repository.NewQuestionRepo(db)

	existing, err := userRepo.GetByEmail(ctx, "host@example.com")
	if err != nil {
		log.Fatal("Failed to check for demo user:", err)
	}
	if existing != nil {
		log.Println("Demo data already seeded, nothing to do")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user := &model.User{
		Username:     "demo-host",
		Email:        "host@example.com",
		PasswordHash: string(hash),
		Role:         "host",
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal("Failed to create demo user:", err)
	}
	log.Println("Created demo user host@example.com / password123")

	quiz := &model.Quiz{
		Title:       "General Knowledge Warmup",
		Description: "A short demo quiz",
		AuthorID:    user.ID,
		IsPublic:    true,
	}
	if err := quizRepo.Create(ctx, quiz); err != nil {
		log.Fatal("Failed to create demo quiz:", err)
	}

	questions := []*model.Question{
		{
			QuizID:     quiz.ID,
			Text:       "Which planet is known as the Red Planet?",
			Type:       model.QuestionTypeTest,
			TimeLimit:  20,
			Score:      2,
			OrderIndex: 0,
			Answers: []model.AnswerOption{
				{Text: "Venus"},
				{Text: "Mars", IsCorrect: true},
				{Text: "Jupiter"},
				{Text: "Mercury"},
			},
		},
		{
			QuizID:     quiz.ID,
			Text:       "What is the chemical symbol for gold?",
			Type:       model.QuestionTypeOpen,
			TimeLimit:  30,
			Score:      3,
			OrderIndex: 1,
			Answers: []model.AnswerOption{
				{Text: "Au", IsCorrect: true},
			},
		},
		{
			QuizID:     quiz.ID,
			Text:       "How many continents are there?",
			Type:       model.QuestionTypeTest,
			TimeLimit:  0,
			Score:      1,
			OrderIndex: 2,
			Answers: []model.AnswerOption{
				{Text: "5"},
				{Text: "6"},
				{Text: "7", IsCorrect: true},
			},
		},
	}
	for _, q := range questions {
		if err := questionRepo.Create(ctx, q); err != nil {
			log.Fatal("Failed to create demo question:", err)
		}
	}

	log.Printf("Seeded quiz %s with %d questions", quiz.ID, len(questions))
}
