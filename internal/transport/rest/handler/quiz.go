package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"livequiz/internal/model"
	"livequiz/internal/repository"
	"livequiz/internal/transport/rest/middleware"
)

// QuizHandler handles quiz and question endpoints
type QuizHandler struct {
	quizRepo     repository.QuizRepo
	questionRepo repository.QuestionRepo
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizRepo repository.QuizRepo, questionRepo repository.QuestionRepo) *QuizHandler {
	return &QuizHandler{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
	}
}

// CreateQuizRequest is the request body for creating a quiz
type CreateQuizRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// Create handles POST /v1/quizzes
// @Summary Create a quiz
// @Tags quizzes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateQuizRequest true "quiz data"
// @Success 201 {object} model.Quiz
// @Router /quizzes [post]
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	quiz := &model.Quiz{
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    userID,
		IsPublic:    req.IsPublic,
	}
	if err := h.quizRepo.Create(r.Context(), quiz); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create quiz")
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

// List handles GET /v1/quizzes
// @Summary List the caller's quizzes
// @Tags quizzes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Quiz
// @Router /quizzes [get]
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	quizzes, err := h.quizRepo.ListByAuthor(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list quizzes")
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

// QuizWithQuestions is the detail view of a quiz
type QuizWithQuestions struct {
	*model.Quiz
	Questions []*model.Question `json:"questions"`
}

// Get handles GET /v1/quizzes/{quizId}
// @Summary Get a quiz with its ordered questions
// @Tags quizzes
// @Security BearerAuth
// @Produce json
// @Param quizId path string true "quiz id"
// @Success 200 {object} QuizWithQuestions
// @Router /quizzes/{quizId} [get]
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]

	quiz, err := h.quizRepo.GetByID(r.Context(), quizID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load quiz")
		return
	}
	if quiz == nil {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}

	questions, err := h.questionRepo.ListByQuiz(r.Context(), quizID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}

	writeJSON(w, http.StatusOK, &QuizWithQuestions{Quiz: quiz, Questions: questions})
}

// CreateQuestionRequest is the request body for adding a question
type CreateQuestionRequest struct {
	Text       string               `json:"text"`
	Type       model.QuestionType   `json:"type"`
	TimeLimit  int                  `json:"timeLimit"`
	Score      int                  `json:"score"`
	OrderIndex int                  `json:"orderIndex"`
	MediaID    string               `json:"mediaId"`
	Answers    []model.AnswerOption `json:"answers"`
}

// CreateQuestion handles POST /v1/quizzes/{quizId}/questions
// @Summary Add a question to a quiz
// @Tags quizzes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param quizId path string true "quiz id"
// @Param body body CreateQuestionRequest true "question data"
// @Success 201 {object} model.Question
// @Router /quizzes/{quizId}/questions [post]
func (h *QuizHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["quizId"]
	userID := middleware.GetUserID(r.Context())

	quiz, err := h.quizRepo.GetByID(r.Context(), quizID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load quiz")
		return
	}
	if quiz == nil {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	if quiz.AuthorID != userID {
		writeError(w, http.StatusForbidden, "not the quiz author")
		return
	}

	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != model.QuestionTypeTest && req.Type != model.QuestionTypeOpen {
		writeError(w, http.StatusBadRequest, "type must be test or open")
		return
	}

	question := &model.Question{
		QuizID:     quizID,
		Text:       req.Text,
		Type:       req.Type,
		TimeLimit:  req.TimeLimit,
		Score:      req.Score,
		OrderIndex: req.OrderIndex,
		MediaID:    req.MediaID,
		Answers:    req.Answers,
	}
	if err := h.questionRepo.Create(r.Context(), question); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create question")
		return
	}

	writeJSON(w, http.StatusCreated, question)
}
