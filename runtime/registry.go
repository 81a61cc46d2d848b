// Package runtime owns the relay's in-memory state and the dispatcher that
// mediates inbound commands into store mutations and outbound broadcasts.
// It contains no transport logic.
package runtime

import (
	"sync"

	"github.com/samber/lo"

	"quiz-relay/domain"
)

// roomEntry keeps members both as a map for O(1) lookup and as an ordered
// list of connection IDs so participant lists are stable across broadcasts
// (first joined, first listed).
type roomEntry struct {
	order   []string
	members map[string]domain.Participant
}

// Registry maps rooms to their participants. A connection belongs to at most
// one room; joining a new room removes it from the previous one. A room with
// zero participants is never kept around.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]*roomEntry
	connRoom map[string]domain.RoomID // connectionID -> current room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[domain.RoomID]*roomEntry),
		connRoom: make(map[string]domain.RoomID),
	}
}

// Join inserts or updates the participant under roomID, creating the room on
// the fly. If the connection was in another room it is removed from there
// first; the returned departures report that removal so the caller can clean
// up any session attached to a room that just emptied.
// The returned list is the full, insertion-ordered membership of roomID.
func (r *Registry) Join(roomID domain.RoomID, p domain.Participant) ([]domain.Participant, []domain.RoomDeparture) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var departures []domain.RoomDeparture
	if prev, ok := r.connRoom[p.ConnectionID]; ok && prev != roomID {
		departures = r.removeLocked(p.ConnectionID, departures)
	}

	entry, ok := r.rooms[roomID]
	if !ok {
		entry = &roomEntry{members: make(map[string]domain.Participant)}
		r.rooms[roomID] = entry
	}
	if _, exists := entry.members[p.ConnectionID]; !exists {
		entry.order = append(entry.order, p.ConnectionID)
	}
	entry.members[p.ConnectionID] = p
	r.connRoom[p.ConnectionID] = roomID

	return snapshotLocked(entry), departures
}

// Leave removes the connection from every room that contains it. The reverse
// index makes this a single lookup in practice, but the scan below stays as a
// consistency guarantee in case the single-room invariant was ever violated.
// Rooms left empty are deleted before returning.
func (r *Registry) Leave(connectionID string) []domain.RoomDeparture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(connectionID, nil)
}

func (r *Registry) removeLocked(connectionID string, departures []domain.RoomDeparture) []domain.RoomDeparture {
	for roomID, entry := range r.rooms {
		if _, ok := entry.members[connectionID]; !ok {
			continue
		}
		delete(entry.members, connectionID)
		entry.order = lo.Without(entry.order, connectionID)

		empty := len(entry.members) == 0
		if empty {
			delete(r.rooms, roomID)
		}
		departures = append(departures, domain.RoomDeparture{
			RoomID:    roomID,
			Remaining: snapshotLocked(entry),
			Empty:     empty,
		})
	}
	delete(r.connRoom, connectionID)
	return departures
}

// Participants returns an insertion-ordered snapshot of the room membership,
// empty if the room doesn't exist.
func (r *Registry) Participants(roomID domain.RoomID) []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		return []domain.Participant{}
	}
	return snapshotLocked(entry)
}

// Counts reports how many connections currently sit in a room and how many
// rooms exist, for the health endpoint.
func (r *Registry) Counts() (connections int, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connRoom), len(r.rooms)
}

func snapshotLocked(entry *roomEntry) []domain.Participant {
	return lo.Map(entry.order, func(connectionID string, _ int) domain.Participant {
		return entry.members[connectionID]
	})
}
