// Package domain contains core concepts of the quiz relay.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant identifies one connection's user inside a room.
// A connection carries at most one Participant at a time.
type Participant struct {
	ConnectionID string    `json:"connectionId"`
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"userName"`
	JoinedAt     time.Time `json:"joinedAt"`
}
