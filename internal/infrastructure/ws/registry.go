package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/application/authz"
	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/infrastructure/metrics"
)

// Registry is the process-wide map from group ID to live room. Rooms
// are created lazily on first connect and torn down once they have
// been empty for the grace period. Group lifecycle is unaffected;
// rooms hold open connections, groups are pure data.
type Registry struct {
	authorizer   *authz.Authorizer
	messages     domain.MessageRepository
	metrics      *metrics.Metrics
	logger       *zap.SugaredLogger
	historyLimit int
	grace        time.Duration

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewRegistry(
	authorizer *authz.Authorizer,
	messages domain.MessageRepository,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
	historyLimit int,
	grace time.Duration,
) *Registry {
	return &Registry{
		authorizer:   authorizer,
		messages:     messages,
		metrics:      m,
		logger:       logger,
		historyLimit: historyLimit,
		grace:        grace,
		rooms:        make(map[string]*Room),
	}
}

// Connect routes the client to the group's room, creating the room if
// needed. The retry loop absorbs the rare race where the room tears
// down between lookup and registration.
func (r *Registry) Connect(ctx context.Context, client *Client) (*Room, error) {
	for {
		room := r.getOrCreate(client.GroupID)

		err := room.Connect(ctx, client)
		if errors.Is(err, errRoomClosed) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return room, nil
	}
}

// getOrCreate is an atomic insert-if-absent: two first-connectors for
// the same group always end up in the same live room.
func (r *Registry) getOrCreate(groupID string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[groupID]
	if !ok {
		room = newRoom(r, groupID)
		r.rooms[groupID] = room
		r.metrics.RoomsActive.Inc()
		go room.run()

		r.logger.Infow("room created", "group", groupID)
	}

	return room
}

// scheduleTeardown arms the empty-room timer. If the room is still
// empty when it fires, the room goroutine exits and the entry is
// dropped; a reconnect within the grace period keeps it alive.
func (r *Registry) scheduleTeardown(groupID string) {
	time.AfterFunc(r.grace, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		room, ok := r.rooms[groupID]
		if !ok {
			return
		}
		if room.stopIfEmpty() {
			delete(r.rooms, groupID)
			r.metrics.RoomsActive.Dec()

			r.logger.Infow("room torn down", "group", groupID)
		}
	})
}

// Rooms reports the number of live rooms.
func (r *Registry) Rooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
