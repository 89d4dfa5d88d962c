package ws

import (
	"encoding/json"
	"log"
	"sync"

	"livequiz/internal/model"
)

// Connection represents one WebSocket connection within a session
type Connection struct {
	SocketID   string
	SessionURL string
	PlayerID   string // stable identity: userId or anonymous player id
	Nickname   string
	IsHost     bool
	IsViewer   bool // set when the socket registers for the video relay
	Send       chan []byte
}

// Hub manages the per-session connection tables and implements
// service.Broadcaster. Delivery is best-effort: a connection whose send
// buffer is full just misses the message, and closed sockets disappear
// from the tables on unregister.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]*Connection // sessionURL -> socketID -> conn
	hosts map[string]*Connection            // sessionURL -> control host conn

	register   chan *Connection
	unregister chan *Connection

	// onRemove is called after a connection leaves, so relay state for a
	// departing host can be torn down.
	onRemove func(conn *Connection)
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		hosts:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
	}
	go h.run()
	return h
}

// SetRemoveHook installs the disconnect callback (used by the relay).
func (h *Hub) SetRemoveHook(fn func(conn *Connection)) {
	h.onRemove = fn
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionURL] == nil {
				h.conns[conn.SessionURL] = make(map[string]*Connection)
			}
			h.conns[conn.SessionURL][conn.SocketID] = conn
			if conn.IsHost {
				// A fresh host connection supersedes the previous one for
				// control commands.
				h.hosts[conn.SessionURL] = conn
			}
			h.mu.Unlock()
			log.Printf("ws: %s connected to session %s (host=%v)", conn.PlayerID, conn.SessionURL, conn.IsHost)

		case conn := <-h.unregister:
			h.mu.Lock()
			removed := false
			if socks, ok := h.conns[conn.SessionURL]; ok {
				if existing, ok := socks[conn.SocketID]; ok && existing == conn {
					delete(socks, conn.SocketID)
					close(conn.Send)
					removed = true
					if len(socks) == 0 {
						delete(h.conns, conn.SessionURL)
					}
				}
			}
			if existing, ok := h.hosts[conn.SessionURL]; ok && existing == conn {
				delete(h.hosts, conn.SessionURL)
			}
			h.mu.Unlock()
			if removed {
				log.Printf("ws: %s disconnected from session %s", conn.PlayerID, conn.SessionURL)
				if h.onRemove != nil {
					h.onRemove(conn)
				}
			}
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

func (h *Hub) send(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		// Drop message if buffer full
	}
}

func marshal(msg *model.ServerMessage) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return nil
	}
	return data
}

// ToSession sends a message to every connection in a session
func (h *Hub) ToSession(sessionURL string, msg *model.ServerMessage) {
	data := marshal(msg)
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.conns[sessionURL] {
		h.send(conn, data)
	}
}

// ToHost sends a message to the session's control host connection
func (h *Hub) ToHost(sessionURL string, msg *model.ServerMessage) {
	data := marshal(msg)
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conn, ok := h.hosts[sessionURL]; ok {
		h.send(conn, data)
	}
}

// ToPlayer sends a message to every connection of one player identity
func (h *Hub) ToPlayer(sessionURL, playerID string, msg *model.ServerMessage) {
	data := marshal(msg)
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.conns[sessionURL] {
		if !conn.IsHost && conn.PlayerID == playerID {
			h.send(conn, data)
		}
	}
}

// ToPlayers sends a message to all non-host connections in a session
func (h *Hub) ToPlayers(sessionURL string, msg *model.ServerMessage) {
	data := marshal(msg)
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.conns[sessionURL] {
		if !conn.IsHost {
			h.send(conn, data)
		}
	}
}

// ToSocket sends a message to one specific connection (relay routing)
func (h *Hub) ToSocket(sessionURL, socketID string, msg *model.ServerMessage) {
	data := marshal(msg)
	if data == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conn, ok := h.conns[sessionURL][socketID]; ok {
		h.send(conn, data)
	}
}

// MarkViewer flags a socket as a video viewer
func (h *Hub) MarkViewer(sessionURL, socketID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.conns[sessionURL][socketID]; ok {
		conn.IsViewer = true
	}
}
