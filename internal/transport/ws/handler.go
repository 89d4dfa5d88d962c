package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"livequiz/internal/model"
	"livequiz/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096 // SDP offers are a few KB

	maxChatLen = 500

	commandTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	relay   *Relay
	authSvc *service.AuthService
	gameSvc *service.GameService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, relay *Relay, authSvc *service.AuthService, gameSvc *service.GameService) *Handler {
	h := &Handler{
		hub:     hub,
		relay:   relay,
		authSvc: authSvc,
		gameSvc: gameSvc,
	}
	hub.SetRemoveHook(func(conn *Connection) {
		relay.RemoveSocket(conn.SessionURL, conn.SocketID)
	})
	return h
}

// ServeWS handles GET /v1/ws/sessions/{url}?token=...
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionURL := mux.Vars(r)["url"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	identity, err := h.authSvc.ResolveIdentity(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if identity.SessionURL != "" && identity.SessionURL != sessionURL {
		http.Error(w, "token not valid for this session", http.StatusForbidden)
		return
	}

	snapshot, isHost, err := h.gameSvc.Admit(r.Context(), sessionURL, identity)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, service.ErrInvalidState) {
			http.Error(w, "session has ended", http.StatusGone)
			return
		}
		log.Printf("ws: admission failed for session %s: %v", sessionURL, err)
		http.Error(w, "admission failed", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SocketID:   uuid.New().String(),
		SessionURL: sessionURL,
		PlayerID:   identity.ID,
		Nickname:   identity.Nickname,
		IsHost:     isHost,
		Send:       make(chan []byte, 256),
	}

	h.hub.Register(conn)

	// Initial snapshot goes only to this socket.
	if data := marshal(snapshot); data != nil {
		conn.Send <- data
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg model.ClientMessage
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			break
		}
		h.dispatch(conn, &msg)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound message. Errors go back to the sender only,
// as error envelopes with a stable reason; they never take the session down.
func (h *Handler) dispatch(conn *Connection, msg *model.ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case model.MsgGetSessionInfo:
		info, err := h.gameSvc.SessionInfo(ctx, conn.SessionURL)
		if err != nil {
			h.sendError(conn, err)
			return
		}
		h.reply(conn, info)

	case model.MsgGetPlayersList:
		list, err := h.gameSvc.PlayersList(ctx, conn.SessionURL)
		if err != nil {
			h.sendError(conn, err)
			return
		}
		h.reply(conn, list)

	case model.MsgStartGame:
		if err := h.gameSvc.StartGame(ctx, conn.SessionURL, conn.PlayerID); err != nil {
			h.sendError(conn, err)
		}

	case model.MsgNextQuestion:
		if err := h.gameSvc.NextQuestion(ctx, conn.SessionURL, conn.PlayerID); err != nil {
			h.sendError(conn, err)
		}

	case model.MsgPauseGame:
		if err := h.gameSvc.PauseGame(ctx, conn.SessionURL, conn.PlayerID); err != nil {
			h.sendError(conn, err)
		}

	case model.MsgResumeGame:
		if err := h.gameSvc.ResumeGame(ctx, conn.SessionURL, conn.PlayerID); err != nil {
			h.sendError(conn, err)
		}

	case model.MsgEndGame:
		if err := h.gameSvc.EndGame(ctx, conn.SessionURL, conn.PlayerID); err != nil {
			h.sendError(conn, err)
		}

	case model.MsgSubmitAnswer:
		result, err := h.gameSvc.SubmitAnswer(ctx, conn.SessionURL, conn.PlayerID, msg)
		if err != nil {
			h.sendError(conn, err)
			return
		}
		h.reply(conn, &model.ServerMessage{
			Type:       model.MsgAnswerSubmitted,
			QuestionID: msg.QuestionID,
			IsCorrect:  result.IsCorrect,
			Score:      &result.PointsAwarded,
			TotalScore: &result.TotalScore,
		})

	case model.MsgChatMessage:
		h.handleChat(conn, msg)

	case model.MsgWebRTCRegisterHost:
		if !conn.IsHost {
			h.sendError(conn, service.ErrUnauthorized)
			return
		}
		h.relay.RegisterHost(conn.SessionURL, conn.SocketID)
		h.reply(conn, &model.ServerMessage{Type: model.MsgWebRTCHostRegistered})

	case model.MsgWebRTCRegisterView:
		h.hub.MarkViewer(conn.SessionURL, conn.SocketID)
		hostSocket, hasHost := h.relay.RegisterViewer(conn.SessionURL, conn.SocketID)
		if hasHost {
			// Tell the host a viewer arrived so it produces a fresh offer.
			h.hub.ToSocket(conn.SessionURL, hostSocket, &model.ServerMessage{
				Type:     model.MsgWebRTCViewerConnected,
				ViewerID: conn.SocketID,
			})
		}

	case model.MsgWebRTCOffer, model.MsgWebRTCAnswer, model.MsgWebRTCICECandidate:
		h.relay.Route(h.hub, conn, msg)

	default:
		h.sendError(conn, service.ErrValidation)
	}
}

func (h *Handler) handleChat(conn *Connection, msg *model.ClientMessage) {
	if msg.Text == "" || len(msg.Text) > maxChatLen {
		h.sendError(conn, service.ErrValidation)
		return
	}
	h.hub.ToSession(conn.SessionURL, &model.ServerMessage{
		Type:     model.MsgChatMessage,
		PlayerID: conn.PlayerID,
		Nickname: conn.Nickname,
		Text:     msg.Text,
	})
}

func (h *Handler) reply(conn *Connection, msg *model.ServerMessage) {
	if data := marshal(msg); data != nil {
		select {
		case conn.Send <- data:
		default:
		}
	}
}

func (h *Handler) sendError(conn *Connection, err error) {
	reason := service.ErrorReason(err)
	if reason == "internal_error" {
		log.Printf("ws: internal error on session %s: %v", conn.SessionURL, err)
	}
	h.reply(conn, &model.ServerMessage{
		Type:    model.MsgError,
		Reason:  reason,
		Message: publicMessage(reason),
	})
}

func publicMessage(reason string) string {
	switch reason {
	case "not_found":
		return "session or question not found"
	case "unauthorized":
		return "you are not allowed to do that"
	case "invalid_state":
		return "the session state does not allow this command"
	case "stale_question":
		return "that question is no longer active"
	case "time_expired":
		return "time is up for this question"
	case "already_answered":
		return "you already answered this question"
	case "no_more_questions":
		return "no questions remain in this quiz"
	case "validation_error":
		return "malformed message"
	default:
		return "something went wrong"
	}
}
