package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// handleFeed upgrades the connection and streams the session's snapshot
// after every committed transition. The feed is read-only: inputs go through
// the HTTP entry points so the feed can never mutate state, and a client
// that only mirrors locally stays honest by resyncing from it.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("feed upgrade failed: %v", err)
		return
	}

	snapshots, cancel := sess.Subscribe()
	defer cancel()
	defer ws.Close()

	log.Printf("feed attached to session %s from %s", sess.ID, ws.RemoteAddr())

	// Discard client frames; their only purpose is to surface close errors.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// Current state first, so a late subscriber starts from truth.
	ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(sess.State()); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteJSON(snap); err != nil {
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
