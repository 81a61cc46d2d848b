package domain

// RoomID names a broadcast group. Rooms are created implicitly on the first
// join and deleted the moment the last participant is gone.
type RoomID string

// RoomDeparture describes the effect of removing one connection from one room.
// Empty means the room (and any session attached to it) no longer exists.
type RoomDeparture struct {
	RoomID    RoomID
	Remaining []Participant
	Empty     bool
}
