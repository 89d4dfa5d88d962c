package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livequiz/internal/model"
)

type SubmissionRepo interface {
	Create(ctx context.Context, sub *model.Submission) error
	Exists(ctx context.Context, sessionID, playerID, questionID string) (bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.Submission, error)
	DeleteBySession(ctx context.Context, sessionID string) error
	EnsureIndexes(ctx context.Context) error
}

type submissionRepo struct {
	collection *mongo.Collection
}

func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		collection: db.Collection("submissions"),
	}
}

// EnsureIndexes enforces at most one submission per (session, player, question).
func (r *submissionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "playerId", Value: 1},
			{Key: "questionId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}
	if sub.AnsweredAt.IsZero() {
		sub.AnsweredAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, sub)
	return err
}

func (r *submissionRepo) Exists(ctx context.Context, sessionID, playerID, questionID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"sessionId":  sessionID,
		"playerId":   playerID,
		"questionId": questionID,
	})
	return n > 0, err
}

func (r *submissionRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Submission, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []*model.Submission
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *submissionRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}
