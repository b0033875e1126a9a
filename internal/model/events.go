package model

import "time"

// EventType identifies a broadcast on a session channel
type EventType string

const (
	EventPlayerJoined EventType = "player-joined"
	EventMoveMade     EventType = "move-made"
	EventSessionEnded EventType = "session-ended"
)

// Event is a message published on a session's channel
type Event struct {
	Type      EventType
	SessionID SessionID
	Timestamp time.Time
	Payload   any // Player, MoveMadePayload or SessionEndedPayload
}

// MoveMadePayload carries the authoritative snapshot after a move
type MoveMadePayload struct {
	GameState   *GameSession `json:"gameState"`
	MoveDetails MoveDetails  `json:"moveDetails"`
}

// SessionEndedPayload carries the final snapshot of an ended session
type SessionEndedPayload struct {
	GameState *GameSession `json:"gameState"`
	Reason    string       `json:"reason"`
}

// JoinNotification is sent to the notification endpoint before a join is accepted
type JoinNotification struct {
	GameID     SessionID `json:"gameId"`
	PlayerName string    `json:"playerName"`
}

// MoveNotification is sent to the notification endpoint before a move is broadcast
type MoveNotification struct {
	GameState   *GameSession `json:"gameState"`
	MoveDetails MoveDetails  `json:"moveDetails"`
}
