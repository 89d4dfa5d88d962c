package ws

import (
	"encoding/json"
	"testing"

	"livequiz/internal/model"
)

// newTestHub builds a hub with direct table access so tests stay
// deterministic without the register/unregister goroutine.
func newTestHub() *Hub {
	return &Hub{
		conns: make(map[string]map[string]*Connection),
		hosts: make(map[string]*Connection),
	}
}

func addConn(h *Hub, sessionURL, socketID string, isHost bool) *Connection {
	conn := &Connection{
		SocketID:   socketID,
		SessionURL: sessionURL,
		PlayerID:   socketID,
		IsHost:     isHost,
		Send:       make(chan []byte, 8),
	}
	if h.conns[sessionURL] == nil {
		h.conns[sessionURL] = make(map[string]*Connection)
	}
	h.conns[sessionURL][socketID] = conn
	if isHost {
		h.hosts[sessionURL] = conn
	}
	return conn
}

func recvMessage(t *testing.T, conn *Connection) *model.ServerMessage {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg model.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return &msg
	default:
		t.Fatalf("no message queued for socket %s", conn.SocketID)
		return nil
	}
}

func assertNoMessage(t *testing.T, conn *Connection) {
	t.Helper()
	select {
	case data := <-conn.Send:
		t.Fatalf("unexpected message for socket %s: %s", conn.SocketID, data)
	default:
	}
}

func TestOfferFansOutToViewers(t *testing.T) {
	hub := newTestHub()
	relay := NewRelay()

	host := addConn(hub, "slug1", "sock-host", true)
	v1 := addConn(hub, "slug1", "sock-v1", false)
	v2 := addConn(hub, "slug1", "sock-v2", false)

	relay.RegisterHost("slug1", host.SocketID)
	relay.RegisterViewer("slug1", v1.SocketID)
	relay.RegisterViewer("slug1", v2.SocketID)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	relay.Route(hub, host, &model.ClientMessage{Type: model.MsgWebRTCOffer, Offer: offer})

	for _, viewer := range []*Connection{v1, v2} {
		msg := recvMessage(t, viewer)
		if msg.Type != model.MsgWebRTCOffer {
			t.Fatalf("viewer got %s, want webrtc_offer", msg.Type)
		}
		if string(msg.Offer) != string(offer) {
			t.Fatalf("offer payload not passed through opaque: %s", msg.Offer)
		}
	}
	assertNoMessage(t, host)
}

func TestOfferFromNonHostIsDropped(t *testing.T) {
	hub := newTestHub()
	relay := NewRelay()

	host := addConn(hub, "slug1", "sock-host", true)
	viewer := addConn(hub, "slug1", "sock-v1", false)

	relay.RegisterHost("slug1", host.SocketID)
	relay.RegisterViewer("slug1", viewer.SocketID)

	relay.Route(hub, viewer, &model.ClientMessage{Type: model.MsgWebRTCOffer, Offer: json.RawMessage(`{}`)})

	assertNoMessage(t, host)
	assertNoMessage(t, viewer)
}

func TestOfferWithoutViewersIsDropped(t *testing.T) {
	hub := newTestHub()
	relay := NewRelay()

	host := addConn(hub, "slug1", "sock-host", true)
	relay.RegisterHost("slug1", host.SocketID)

	relay.Route(hub, host, &model.ClientMessage{Type: model.MsgWebRTCOffer, Offer: json.RawMessage(`{}`)})
	assertNoMessage(t, host)
}

func TestAnswerRoutedToHostWithViewerID(t *testing.T) {
	hub := newTestHub()
	relay := NewRelay()

	host := addConn(hub, "slug1", "sock-host", true)
	viewer := addConn(hub, "slug1", "sock-v1", false)

	relay.RegisterHost("slug1", host.SocketID)
	relay.RegisterViewer("slug1", viewer.SocketID)

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	relay.Route(hub, viewer, &model.ClientMessage{Type: model.MsgWebRTCAnswer, Answer: answer})

	msg := recvMessage(t, host)
	if msg.Type != model.MsgWebRTCAnswer {
		t.Fatalf("host got %s, want webrtc_answer", msg.Type)
	}
	if msg.ViewerID != viewer.SocketID {
		t.Fatalf("answer missing viewer id, got %q", msg.ViewerID)
	}
	if string(msg.Answer) != string(answer) {
		t.Fatalf("answer payload mangled: %s", msg.Answer)
	}
}

func TestICECandidateRoutedByRole(t *testing.T) {
	hub := newTestHub()
	relay := NewRelay()

	host := addConn(hub, "slug1", "sock-host", true)
	viewer := addConn(hub, "slug1", "sock-v1", false)

	relay.RegisterHost("slug1", host.SocketID)
	relay.RegisterViewer("slug1", viewer.SocketID)

	candidate := json.RawMessage(`{"candidate":"udp 1"}`)

	relay.Route(hub, host, &model.ClientMessage{Type: model.MsgWebRTCICECandidate, ICECandidate: candidate})
	msg := recvMessage(t, viewer)
	if msg.Type != model.MsgWebRTCICECandidate || string(msg.ICECandidate) != string(candidate) {
		t.Fatalf("viewer got %+v", msg)
	}

	relay.Route(hub, viewer, &model.ClientMessage{Type: model.MsgWebRTCICECandidate, ICECandidate: candidate})
	msg = recvMessage(t, host)
	if msg.Type != model.MsgWebRTCICECandidate {
		t.Fatalf("host got %s", msg.Type)
	}
	if msg.ViewerID != viewer.SocketID {
		t.Fatal("viewer candidate must carry the sender's id")
	}
}

func TestRegisterHostReplacesPrevious(t *testing.T) {
	relay := NewRelay()

	relay.RegisterHost("slug1", "sock-old")
	relay.RegisterHost("slug1", "sock-new")

	if id, ok := relay.HostSocket("slug1"); !ok || id != "sock-new" {
		t.Fatalf("expected sock-new as host, got %q (ok=%v)", id, ok)
	}
	if relay.IsHostSocket("slug1", "sock-old") {
		t.Fatal("replaced host still registered")
	}
}

func TestRegisterViewerReportsHostPresence(t *testing.T) {
	relay := NewRelay()

	if _, hasHost := relay.RegisterViewer("slug1", "sock-v1"); hasHost {
		t.Fatal("no host registered yet")
	}

	relay.RegisterHost("slug1", "sock-host")
	hostID, hasHost := relay.RegisterViewer("slug1", "sock-v2")
	if !hasHost || hostID != "sock-host" {
		t.Fatalf("expected sock-host, got %q (hasHost=%v)", hostID, hasHost)
	}
}

func TestRemoveSocketTearsDownState(t *testing.T) {
	relay := NewRelay()

	relay.RegisterHost("slug1", "sock-host")
	relay.RegisterViewer("slug1", "sock-v1")
	relay.RegisterViewer("slug1", "sock-v2")

	relay.RemoveSocket("slug1", "sock-v1")
	if got := relay.ViewerSockets("slug1"); len(got) != 1 || got[0] != "sock-v2" {
		t.Fatalf("viewer not removed, got %v", got)
	}

	relay.RemoveSocket("slug1", "sock-host")
	if _, ok := relay.HostSocket("slug1"); ok {
		t.Fatal("departing host must clear the registration")
	}

	relay.RemoveSocket("slug1", "sock-v2")
	if got := relay.ViewerSockets("slug1"); len(got) != 0 {
		t.Fatalf("expected empty viewer set, got %v", got)
	}
}
