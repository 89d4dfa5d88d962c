package model

import "time"

type SessionStatus string

const (
	SessionWaiting SessionStatus = "waiting"
	SessionActive  SessionStatus = "active"
	SessionPaused  SessionStatus = "paused"
	SessionEnded   SessionStatus = "ended"
)

// Player is a roster entry inside a session. Entries are keyed by a stable
// player identity so a reconnecting client never duplicates its row.
type Player struct {
	ID       string    `json:"id" bson:"id"`
	Nickname string    `json:"nickname" bson:"nickname"`
	Score    int       `json:"score" bson:"score"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

// Session is one live instance of a quiz. URL is the public join slug and
// the WebSocket route; it never changes after creation.
type Session struct {
	ID                string        `json:"id" bson:"_id,omitempty"`
	URL               string        `json:"url" bson:"url"`
	QuizID            string        `json:"quizId" bson:"quizId"`
	HostID            string        `json:"hostId" bson:"hostId"`
	Status            SessionStatus `json:"status" bson:"status"`
	CurrentQuestionID string        `json:"currentQuestionId,omitempty" bson:"currentQuestionId,omitempty"`
	Players           []Player      `json:"players" bson:"players"`
	CreatedAt         time.Time     `json:"createdAt" bson:"createdAt"`
	StartedAt         *time.Time    `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt           *time.Time    `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// PlayerResult is one row of the per-session results view.
type PlayerResult struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Answered int    `json:"answered"`
	Correct  int    `json:"correct"`
}
