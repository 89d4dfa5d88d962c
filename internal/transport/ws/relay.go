package ws

import (
	"log"
	"sync"

	"livequiz/internal/model"
)

// Relay forwards WebRTC signaling between the one registered broadcasting
// host and any number of viewers in a session. Payloads pass through as
// opaque JSON; the relay never parses SDP or candidates and holds no media.
type Relay struct {
	mu      sync.Mutex
	hosts   map[string]string          // sessionURL -> host socketID
	viewers map[string]map[string]bool // sessionURL -> viewer socketIDs
}

// NewRelay creates a new signaling relay
func NewRelay() *Relay {
	return &Relay{
		hosts:   make(map[string]string),
		viewers: make(map[string]map[string]bool),
	}
}

// RegisterHost records a session's broadcasting host. A re-registration
// replaces the previous one; at most one host is active per session.
func (r *Relay) RegisterHost(sessionURL, socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[sessionURL] = socketID
	log.Printf("relay: host registered for session %s", sessionURL)
}

// RegisterViewer records a viewer and reports whether a host is currently
// registered (so the host can be told to produce a fresh offer).
func (r *Relay) RegisterViewer(sessionURL, socketID string) (hostSocketID string, hasHost bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewers[sessionURL] == nil {
		r.viewers[sessionURL] = make(map[string]bool)
	}
	r.viewers[sessionURL][socketID] = true
	hostSocketID, hasHost = r.hosts[sessionURL]
	return hostSocketID, hasHost
}

// HostSocket returns the registered host socket for a session.
func (r *Relay) HostSocket(sessionURL string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.hosts[sessionURL]
	return id, ok
}

// ViewerSockets returns the current viewer sockets for a session.
func (r *Relay) ViewerSockets(sessionURL string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.viewers[sessionURL]))
	for id := range r.viewers[sessionURL] {
		out = append(out, id)
	}
	return out
}

// IsHostSocket reports whether the socket is the session's registered host.
func (r *Relay) IsHostSocket(sessionURL, socketID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hosts[sessionURL] == socketID
}

// RemoveSocket tears down whatever relay state the departing socket held.
// A departing host clears the whole host registration for the session.
func (r *Relay) RemoveSocket(sessionURL, socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hosts[sessionURL] == socketID {
		delete(r.hosts, sessionURL)
		log.Printf("relay: host left session %s, broadcast torn down", sessionURL)
	}
	if viewers, ok := r.viewers[sessionURL]; ok {
		delete(viewers, socketID)
		if len(viewers) == 0 {
			delete(r.viewers, sessionURL)
		}
	}
}

// Route forwards one signaling message based on the sender's relay role.
// Offers fan out host->viewers (dropped when no viewer is registered),
// answers and viewer candidates go back to the host, host candidates fan
// out to viewers.
func (r *Relay) Route(hub *Hub, conn *Connection, msg *model.ClientMessage) {
	sessionURL := conn.SessionURL

	switch msg.Type {
	case model.MsgWebRTCOffer:
		if !r.IsHostSocket(sessionURL, conn.SocketID) {
			return
		}
		viewers := r.ViewerSockets(sessionURL)
		if len(viewers) == 0 {
			// No viewer yet: the client re-registers and retries.
			return
		}
		out := &model.ServerMessage{Type: model.MsgWebRTCOffer, Offer: msg.Offer}
		for _, viewerID := range viewers {
			hub.ToSocket(sessionURL, viewerID, out)
		}

	case model.MsgWebRTCAnswer:
		hostID, ok := r.HostSocket(sessionURL)
		if !ok {
			return
		}
		hub.ToSocket(sessionURL, hostID, &model.ServerMessage{
			Type:     model.MsgWebRTCAnswer,
			Answer:   msg.Answer,
			ViewerID: conn.SocketID,
		})

	case model.MsgWebRTCICECandidate:
		out := &model.ServerMessage{Type: model.MsgWebRTCICECandidate, ICECandidate: msg.ICECandidate}
		if r.IsHostSocket(sessionURL, conn.SocketID) {
			for _, viewerID := range r.ViewerSockets(sessionURL) {
				hub.ToSocket(sessionURL, viewerID, out)
			}
		} else {
			if hostID, ok := r.HostSocket(sessionURL); ok {
				out.ViewerID = conn.SocketID
				hub.ToSocket(sessionURL, hostID, out)
			}
		}
	}
}
