package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"livequiz/internal/model"
)

type QuizRepo interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Quiz, error)
	ListPublic(ctx context.Context) ([]*model.Quiz, error)
	Delete(ctx context.Context, id string) error
}

type quizRepo struct {
	collection *mongo.Collection
}

func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{
		collection: db.Collection("quizzes"),
	}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = primitive.NewObjectID().Hex()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, quiz)
	return err
}

func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) ListByAuthor(ctx context.Context, authorID string) ([]*model.Quiz, error) {
	return r.list(ctx, bson.M{"authorId": authorID})
}

func (r *quizRepo) ListPublic(ctx context.Context) ([]*model.Quiz, error) {
	return r.list(ctx, bson.M{"isPublic": true})
}

func (r *quizRepo) list(ctx context.Context, filter bson.M) ([]*model.Quiz, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quizzes []*model.Quiz
	if err = cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
