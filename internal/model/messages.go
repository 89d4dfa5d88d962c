package model

import "encoding/json"

// Inbound message types
const (
	MsgGetSessionInfo     = "get_session_info"
	MsgGetPlayersList     = "get_players_list"
	MsgStartGame          = "start_game"
	MsgNextQuestion       = "next_question"
	MsgPauseGame          = "pause_game"
	MsgResumeGame         = "resume_game"
	MsgEndGame            = "end_game"
	MsgSubmitAnswer       = "submit_answer"
	MsgChatMessage        = "chat_message"
	MsgWebRTCRegisterHost = "webrtc_register_host"
	MsgWebRTCRegisterView = "webrtc_register_viewer"
	MsgWebRTCOffer        = "webrtc_offer"
	MsgWebRTCAnswer       = "webrtc_answer"
	MsgWebRTCICECandidate = "webrtc_ice_candidate"
)

// Outbound message types
const (
	MsgSessionJoined         = "session_joined"
	MsgSessionInfo           = "session_info"
	MsgPlayersList           = "players_list"
	MsgPlayersUpdated        = "players_updated"
	MsgQuestionAvailable     = "question_available"
	MsgQuestionSent          = "question_sent"
	MsgTimeUp                = "time_up"
	MsgAnswerSubmitted       = "answer_submitted"
	MsgAnswerReceived        = "answer_received"
	MsgGameStarted           = "game_started"
	MsgGamePaused            = "game_paused"
	MsgGameResumed           = "game_resumed"
	MsgGameEnded             = "game_ended"
	MsgStatusUpdated         = "status_updated"
	MsgError                 = "error"
	MsgWebRTCHostRegistered  = "webrtc_host_registered"
	MsgWebRTCViewerConnected = "webrtc_viewer_connected"
)

// ClientMessage is the inbound WebSocket envelope. Fields are flat and
// snake_case; which ones are set depends on Type.
type ClientMessage struct {
	Type         string          `json:"type"`
	QuestionID   string          `json:"question_id,omitempty"`
	AnswerID     string          `json:"answer_id,omitempty"`
	TextAnswer   string          `json:"text_answer,omitempty"`
	Text         string          `json:"text,omitempty"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	ICECandidate json.RawMessage `json:"ice_candidate,omitempty"`
}

// ServerMessage is the outbound WebSocket envelope, same flat layout.
// SDP and ICE payloads pass through opaque.
type ServerMessage struct {
	Type              string          `json:"type"`
	SessionID         string          `json:"session_id,omitempty"`
	Status            SessionStatus   `json:"status,omitempty"`
	QuizID            string          `json:"quiz_id,omitempty"`
	PlayerID          string          `json:"player_id,omitempty"`
	Nickname          string          `json:"nickname,omitempty"`
	Score             *int            `json:"score,omitempty"`
	TotalScore        *int            `json:"total_score,omitempty"`
	IsCorrect         *bool           `json:"is_correct,omitempty"`
	QuestionID        string          `json:"question_id,omitempty"`
	CurrentQuestionID string          `json:"current_question_id,omitempty"`
	Question          *PlayerQuestion `json:"question,omitempty"`
	TimeLimit         int             `json:"time_limit,omitempty"`
	Players           []Player        `json:"players,omitempty"`
	Text              string          `json:"text,omitempty"`
	Reason            string          `json:"reason,omitempty"`
	Message           string          `json:"message,omitempty"`
	ViewerID          string          `json:"viewer_id,omitempty"`
	Offer             json.RawMessage `json:"offer,omitempty"`
	Answer            json.RawMessage `json:"answer,omitempty"`
	ICECandidate      json.RawMessage `json:"ice_candidate,omitempty"`
}
