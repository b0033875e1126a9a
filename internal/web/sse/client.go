package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/wordsession/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256

	// SnapshotEvent is the first event on every stream and carries the
	// session as it was when the client connected
	SnapshotEvent = "snapshot"
)

// Client represents a connected SSE client. Spectators have an empty player id.
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(hub *Hub, playerID model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Close removes the client from its hub
func (c *Client) Close() {
	c.hub.Unregister(c)
}

// ServeSSE streams a registered client's events to the response until the
// client goes away or the hub closes. snapshot is sent first when non-empty.
func ServeSSE(w http.ResponseWriter, r *http.Request, client *Client, snapshot []byte) {
	defer client.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if len(snapshot) > 0 {
		if _, err := w.Write(FormatEvent(SnapshotEvent, string(snapshot))); err != nil {
			return
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
