package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"livequiz/internal/cache"
	"livequiz/internal/model"
	"livequiz/internal/service"
	"livequiz/internal/transport/rest/middleware"
)

// SessionHandler handles session lifecycle and join endpoints
type SessionHandler struct {
	registry    *service.RegistryService
	gameSvc     *service.GameService
	authSvc     *service.AuthService
	leaderboard cache.LeaderboardCache
	publicBase  string
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	registry *service.RegistryService,
	gameSvc *service.GameService,
	authSvc *service.AuthService,
	leaderboard cache.LeaderboardCache,
	publicBase string,
) *SessionHandler {
	return &SessionHandler{
		registry:    registry,
		gameSvc:     gameSvc,
		authSvc:     authSvc,
		leaderboard: leaderboard,
		publicBase:  publicBase,
	}
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	QuizID string `json:"quizId"`
}

// Create handles POST /v1/sessions
// @Summary Create a session for a quiz
// @Tags sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateSessionRequest true "session data"
// @Success 201 {object} model.Session
// @Router /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.registry.CreateSession(r.Context(), req.QuizID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// List handles GET /v1/sessions
// @Summary List sessions
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Param ended query bool false "only ended sessions"
// @Success 200 {array} model.Session
// @Router /sessions [get]
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		sessions []*model.Session
		err      error
	)
	if r.URL.Query().Get("ended") == "true" {
		sessions, err = h.registry.ListEndedSessions(r.Context())
	} else {
		sessions, err = h.registry.ListSessions(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Get handles GET /v1/sessions/{url}
// @Summary Get a session by its join slug
// @Tags sessions
// @Produce json
// @Param url path string true "session slug"
// @Success 200 {object} model.Session
// @Router /sessions/{url} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	url := mux.Vars(r)["url"]

	session, err := h.registry.GetSessionByURL(r.Context(), url)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /v1/sessions/{id}
// @Summary Delete a session
// @Tags sessions
// @Security BearerAuth
// @Param id path string true "session id"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r.Context())

	if err := h.registry.DeleteSession(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Join handles POST /v1/sessions/{url}/join — anonymous player entry.
// Rejoining with the issued token keeps the same player id and score.
// @Summary Join a session as an anonymous player
// @Tags sessions
// @Accept json
// @Produce json
// @Param url path string true "session slug"
// @Param body body model.JoinRequest true "nickname"
// @Success 200 {object} model.JoinResponse
// @Router /sessions/{url}/join [post]
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	url := mux.Vars(r)["url"]

	var req model.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Nickname == "" || len(req.Nickname) > 100 {
		writeError(w, http.StatusBadRequest, "nickname must be 1-100 characters")
		return
	}

	session, err := h.registry.GetSessionByURL(r.Context(), url)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, playerID, err := h.authSvc.GeneratePlayerToken(url, req.Nickname)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, &model.JoinResponse{
		PlayerID: playerID,
		Token:    token,
		Session:  session,
	})
}

// CurrentQuestion handles GET /v1/sessions/{url}/question/current
// @Summary Get the currently presented question (player view)
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Param url path string true "session slug"
// @Success 200 {object} model.PlayerQuestion
// @Router /sessions/{url}/question/current [get]
func (h *SessionHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	url := mux.Vars(r)["url"]

	question, err := h.gameSvc.CurrentQuestion(r.Context(), url)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// Results handles GET /v1/sessions/{url}/results
// @Summary Per-player results of a session
// @Tags sessions
// @Produce json
// @Param url path string true "session slug"
// @Success 200 {array} model.PlayerResult
// @Router /sessions/{url}/results [get]
func (h *SessionHandler) Results(w http.ResponseWriter, r *http.Request) {
	url := mux.Vars(r)["url"]

	results, err := h.registry.Results(r.Context(), url)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Leaderboard handles GET /v1/sessions/{url}/leaderboard
// @Summary Top scores for a session
// @Tags sessions
// @Produce json
// @Param url path string true "session slug"
// @Success 200 {array} cache.LeaderboardEntry
// @Router /sessions/{url}/leaderboard [get]
func (h *SessionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	url := mux.Vars(r)["url"]

	session, err := h.registry.GetSessionByURL(r.Context(), url)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries, err := h.leaderboard.GetTop(r.Context(), session.ID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// QR handles GET /v1/sessions/{url}/qr — a PNG QR code of the join link.
// @Summary QR code for the public join link
// @Tags sessions
// @Produce png
// @Param url path string true "session slug"
// @Success 200
// @Router /sessions/{url}/qr [get]
func (h *SessionHandler) QR(w http.ResponseWriter, r *http.Request) {
	url := mux.Vars(r)["url"]

	session, err := h.registry.GetSessionByURL(r.Context(), url)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	joinLink := fmt.Sprintf("%s/session/%s", h.publicBase, session.URL)
	png, err := qrcode.Encode(joinLink, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render qr code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
