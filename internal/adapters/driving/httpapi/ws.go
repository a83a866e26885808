package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// MessageType identifies a websocket message.
type MessageType string

// Websocket message types.
const (
	MsgSnapshot MessageType = "snapshot"
	MsgUpdate   MessageType = "update"
	MsgError    MessageType = "error"
)

// WSMessage is the envelope of every websocket message.
type WSMessage struct {
	Type     MessageType          `json:"type"`
	Snapshot *SnapshotPayload     `json:"snapshot,omitempty"`
	Update   *domain.Notification `json:"update,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// SnapshotPayload is the state of a session when the socket opened.
type SnapshotPayload struct {
	Session *domain.SearchSession `json:"session"`
	Events  []domain.SourceEvent  `json:"events"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// handleWS sends a snapshot and then relays live notifications until the
// session reaches a terminal state or the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	watch, err := s.ports.Search.Watch(r.Context(), UserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer watch.Cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	events := watch.Events
	if events == nil {
		events = []domain.SourceEvent{}
	}
	snapshot := WSMessage{Type: MsgSnapshot, Snapshot: &SnapshotPayload{Session: watch.Session, Events: events}}
	if err := writeMessage(conn, snapshot); err != nil {
		return
	}
	if watch.Session.Status.IsTerminal() {
		closeNormally(conn)
		return
	}

	gone := readLoop(conn)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case n, ok := <-watch.Updates:
			if !ok {
				// Dropped as a slow subscriber, or the hub closed.
				_ = writeMessage(conn, WSMessage{Type: MsgError, Error: "update stream closed"})
				closeNormally(conn)
				return
			}
			if err := writeMessage(conn, WSMessage{Type: MsgUpdate, Update: &n}); err != nil {
				return
			}
			if n.Kind == domain.NotifySession && n.Session != nil && n.Session.Status.IsTerminal() {
				closeNormally(conn)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed, and
// closes the returned channel when the connection fails.
func readLoop(conn *websocket.Conn) <-chan struct{} {
	gone := make(chan struct{})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return gone
}

func writeMessage(conn *websocket.Conn, msg WSMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// checkOrigin accepts same-host and loopback origins, and clients that send
// no Origin header.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Host == r.Host {
		return true
	}
	host := parsed.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1" || strings.HasSuffix(host, ".localhost")
}
