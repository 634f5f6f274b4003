package handlers

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/quizdash/quizdash-backend/config"
	"github.com/quizdash/quizdash-backend/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrHostConflict = errors.New("room already has a host")
)

// gameRoom couples a room's shared state with the connections subscribed to
// it. Everything inside is guarded by state.Mutex, which is the room's
// single serialization point; the store's own lock only guards the table.
type gameRoom struct {
	state       *models.Room
	conns       map[*Connection]bool
	deleteTimer *time.Timer
	quit        chan struct{}

	// deleted marks a room the grace timer has removed from the table.
	// Guarded by state.Mutex; a join that fetched the room before the
	// removal checks it after locking and refetches.
	deleted bool
}

// broadcastLocked fans a frame out to every subscribed connection except
// the given one. Caller holds state.Mutex.
func (gr *gameRoom) broadcastLocked(message []byte, except *Connection) {
	if message == nil {
		return
	}
	for c := range gr.conns {
		if c == except {
			continue
		}
		c.trySend(message)
	}
}

// RoomStore is the process-wide room table. Rooms are created when a host
// first joins an unknown id and garbage-collected after staying empty for
// the grace period.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*gameRoom
	cfg   config.Config
}

func NewRoomStore(cfg config.Config) *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*gameRoom),
		cfg:   cfg,
	}
}

// NormalizeRoomID case-normalizes a caller-supplied room id.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (s *RoomStore) Get(roomID string) (*gameRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gr, ok := s.rooms[NormalizeRoomID(roomID)]
	return gr, ok
}

func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// GetOrCreate returns the room for the given id. Only a host may create a
// missing room; anyone else gets ErrRoomNotFound.
func (s *RoomStore) GetOrCreate(roomID string, requesterIsHost bool) (*gameRoom, error) {
	roomID = NormalizeRoomID(roomID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if gr, ok := s.rooms[roomID]; ok {
		return gr, nil
	}
	if !requesterIsHost {
		return nil, ErrRoomNotFound
	}

	gr := &gameRoom{
		state: models.NewRoom(roomID),
		conns: make(map[*Connection]bool),
		quit:  make(chan struct{}),
	}
	s.rooms[roomID] = gr
	go s.snapshotLoop(gr)
	log.Printf("Room %s created", roomID)
	return gr, nil
}

// armDeleteLocked starts the empty-room grace timer. Caller holds
// state.Mutex.
func (s *RoomStore) armDeleteLocked(gr *gameRoom) {
	if gr.deleteTimer != nil {
		gr.deleteTimer.Stop()
	}
	roomID := gr.state.ID
	gr.deleteTimer = time.AfterFunc(s.cfg.EmptyRoomGrace, func() {
		s.removeIfEmpty(roomID)
	})
}

// cancelDeleteLocked is called on every successful join so a rejoin within
// the grace window keeps the room alive. Caller holds state.Mutex.
func (s *RoomStore) cancelDeleteLocked(gr *gameRoom) {
	if gr.deleteTimer != nil {
		gr.deleteTimer.Stop()
		gr.deleteTimer = nil
	}
}

// removeIfEmpty deletes the room only if it is still empty when the grace
// timer fires.
func (s *RoomStore) removeIfEmpty(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gr, ok := s.rooms[roomID]
	if !ok {
		return
	}
	gr.state.Mutex.Lock()
	empty := len(gr.state.Players) == 0
	if empty {
		gr.deleted = true
	}
	gr.state.Mutex.Unlock()
	if !empty {
		return
	}

	delete(s.rooms, roomID)
	close(gr.quit)
	log.Printf("Room %s deleted after empty grace period", roomID)
}

// snapshotLoop periodically rebroadcasts a compact full-state snapshot to
// rooms above the player threshold, bounding staleness when individual
// relays are lost. It runs for the lifetime of the room.
func (s *RoomStore) snapshotLoop(gr *gameRoom) {
	ticker := time.NewTicker(s.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gr.quit:
			return
		case <-ticker.C:
			gr.state.Mutex.Lock()
			if len(gr.state.Players) > s.cfg.SnapshotMinPlayers {
				gr.broadcastLocked(marshalMessage("game-state-sync", syncPayloadLocked(gr.state)), nil)
			}
			gr.state.Mutex.Unlock()
		}
	}
}

func syncPayloadLocked(st *models.Room) models.GameStateSync {
	players := make([]models.SyncPlayer, 0, len(st.Order))
	for _, id := range st.Order {
		p, ok := st.Players[id]
		if !ok {
			continue
		}
		players = append(players, models.SyncPlayer{
			ID:        p.ID,
			Position:  p.Position,
			Velocity:  p.Velocity,
			Animation: p.Animation,
		})
	}
	return models.GameStateSync{Players: players}
}
