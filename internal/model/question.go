package model

// QuestionType defines how a question is answered and graded
type QuestionType string

const (
	QuestionTypeTest QuestionType = "test" // pick one option, graded by its isCorrect flag
	QuestionTypeOpen QuestionType = "open" // free text, graded against stored correct answers
)

// AnswerOption is one selectable option of a test question. For open
// questions the rows marked correct hold the canonical accepted spellings.
type AnswerOption struct {
	ID        string `json:"id" bson:"id"`
	Text      string `json:"text" bson:"text"`
	IsCorrect bool   `json:"isCorrect" bson:"isCorrect"`
}

// Question belongs to a quiz and is delivered in OrderIndex order.
// TimeLimit is in seconds; 0 means untimed.
type Question struct {
	ID         string         `json:"id" bson:"_id,omitempty"`
	QuizID     string         `json:"quizId" bson:"quizId"`
	Text       string         `json:"text" bson:"text"`
	Type       QuestionType   `json:"type" bson:"type"`
	TimeLimit  int            `json:"timeLimit" bson:"timeLimit"`
	Score      int            `json:"score" bson:"score"`
	OrderIndex int            `json:"orderIndex" bson:"orderIndex"`
	MediaID    string         `json:"mediaId,omitempty" bson:"mediaId,omitempty"`
	Answers    []AnswerOption `json:"answers,omitempty" bson:"answers,omitempty"`
}

// PlayerAnswerOption is an option as shown to players, without the
// isCorrect flag.
type PlayerAnswerOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PlayerQuestion is the question payload sent to players. Test questions
// carry their options stripped of correctness; open questions carry none.
type PlayerQuestion struct {
	ID        string               `json:"id"`
	Text      string               `json:"text"`
	Type      QuestionType         `json:"type"`
	TimeLimit int                  `json:"timeLimit"`
	Score     int                  `json:"score"`
	MediaID   string               `json:"mediaId,omitempty"`
	Answers   []PlayerAnswerOption `json:"answers,omitempty"`
}

// ForPlayer strips grading data from a question before delivery.
func (q *Question) ForPlayer() *PlayerQuestion {
	pq := &PlayerQuestion{
		ID:        q.ID,
		Text:      q.Text,
		Type:      q.Type,
		TimeLimit: q.TimeLimit,
		Score:     q.Score,
		MediaID:   q.MediaID,
	}
	if q.Type == QuestionTypeTest {
		pq.Answers = make([]PlayerAnswerOption, len(q.Answers))
		for i, a := range q.Answers {
			pq.Answers[i] = PlayerAnswerOption{ID: a.ID, Text: a.Text}
		}
	}
	return pq
}
