package service

import "livequiz/internal/model"

// Broadcaster interface for WebSocket fan-out (avoids import cycle with transport/ws).
// Sessions are addressed by their URL slug. Delivery is best-effort.
type Broadcaster interface {
	ToSession(sessionURL string, msg *model.ServerMessage)
	ToHost(sessionURL string, msg *model.ServerMessage)
	ToPlayer(sessionURL, playerID string, msg *model.ServerMessage)
	ToPlayers(sessionURL string, msg *model.ServerMessage)
}
