package server

import (
	"net/http"

	"PalmFM/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StateStreamHandler streams playback state snapshots over a websocket. The
// full snapshot is sent on connect and after every state change.
func (h *APIHandler) StateStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade state stream", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	id, updates := h.ctrl.SubscribeState()
	defer h.ctrl.UnsubscribeState(id)

	logger.Debug("State stream connected",
		logger.String("subscriber", id),
		logger.String("remote", r.RemoteAddr))

	if err := conn.WriteJSON(h.ctrl.Snapshot()); err != nil {
		logger.Debug("State stream write failed", logger.ErrorField(err))
		return
	}

	// Drain the read side so close frames and pings are processed; the stream
	// is one-way otherwise.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			logger.Debug("State stream closed", logger.String("subscriber", id))
			return
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				logger.Debug("State stream write failed", logger.ErrorField(err))
				return
			}
		}
	}
}
