package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// StreamEvents pushes gate transitions and notification changes over
// WebSocket. The first message is the full state; every later message is a
// single event.
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	gateEvents, cancelGate := s.Gate.Subscribe()
	defer cancelGate()
	notes, cancelNotes := s.Notifications.Subscribe()
	defer cancelNotes()

	// The client never sends anything we act on; reading only detects close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(v interface{}) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			s.Logger.Debug("event stream closed", zap.Error(err))
			return false
		}
		return true
	}

	if !send(map[string]interface{}{"type": "state", "state": s.state()}) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-gateEvents:
			if !ok || !send(ev) {
				return
			}
		case ev, ok := <-notes:
			if !ok || !send(ev) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
