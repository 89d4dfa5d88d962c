package model

import "time"

// Submission is one accepted answer. (SessionID, PlayerID, QuestionID) is
// unique; a second attempt is rejected, never overwritten.
type Submission struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	SessionID     string    `json:"sessionId" bson:"sessionId"`
	PlayerID      string    `json:"playerId" bson:"playerId"`
	QuestionID    string    `json:"questionId" bson:"questionId"`
	AnswerID      string    `json:"answerId,omitempty" bson:"answerId,omitempty"`
	TextAnswer    string    `json:"textAnswer,omitempty" bson:"textAnswer,omitempty"`
	IsCorrect     *bool     `json:"isCorrect" bson:"isCorrect"`
	PointsAwarded int       `json:"pointsAwarded" bson:"pointsAwarded"`
	AnsweredAt    time.Time `json:"answeredAt" bson:"answeredAt"`
}

// SubmissionResult is returned to the submitting player only.
type SubmissionResult struct {
	IsCorrect     *bool `json:"isCorrect"`
	PointsAwarded int   `json:"pointsAwarded"`
	TotalScore    int   `json:"totalScore"`
}
