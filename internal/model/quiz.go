package model

import "time"

// Quiz is the externally-owned question container sessions are played from.
type Quiz struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	AuthorID    string    `json:"authorId" bson:"authorId"`
	IsPublic    bool      `json:"isPublic" bson:"isPublic"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
