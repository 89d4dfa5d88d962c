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

type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetByURL(ctx context.Context, url string) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.Session, error)
	ListEnded(ctx context.Context) ([]*model.Session, error)
	URLExists(ctx context.Context, url string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

// EnsureIndexes enforces slug uniqueness at the storage level.
func (r *sessionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = primitive.NewObjectID().Hex()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.Players == nil {
		session.Players = []model.Player{}
	}
	_, err := r.collection.InsertOne(ctx, session)
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *sessionRepo) GetByURL(ctx context.Context, url string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"url": url})
}

func (r *sessionRepo) findOne(ctx context.Context, filter bson.M) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Update(ctx context.Context, session *model.Session) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	return err
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *sessionRepo) List(ctx context.Context) ([]*model.Session, error) {
	return r.list(ctx, bson.M{})
}

func (r *sessionRepo) ListEnded(ctx context.Context) ([]*model.Session, error) {
	return r.list(ctx, bson.M{"status": model.SessionEnded})
}

func (r *sessionRepo) list(ctx context.Context, filter bson.M) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) URLExists(ctx context.Context, url string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"url": url})
	return n > 0, err
}
