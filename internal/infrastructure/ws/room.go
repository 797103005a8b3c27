package ws

import (
	"context"
	"errors"
	"time"

	"github.com/wayfare-app/wayfare/internal/domain"
)

var errRoomClosed = errors.New("room closed")

// Room owns the live connections of one travel group. A single
// goroutine (run) serializes every mutating operation, which yields a
// total message order per group while different groups proceed fully
// in parallel.
type Room struct {
	GroupID string

	commands chan roomCommand
	done     chan struct{}

	registry *Registry

	// lastStamp keeps server timestamps non-decreasing within the
	// group even if the wall clock steps backwards.
	lastStamp time.Time

	clients map[*Client]struct{}
}

type roomCommand interface{ isRoomCommand() }

type connectCmd struct {
	ctx    context.Context
	client *Client
	reply  chan error
}

type sendCmd struct {
	ctx     context.Context
	client  *Client
	content string
	reply   chan sendResult
}

type sendResult struct {
	message *domain.ChatMessage
	err     error
}

type disconnectCmd struct {
	client *Client
}

type stopIfEmptyCmd struct {
	reply chan bool
}

func (connectCmd) isRoomCommand()     {}
func (sendCmd) isRoomCommand()        {}
func (disconnectCmd) isRoomCommand()  {}
func (stopIfEmptyCmd) isRoomCommand() {}

func newRoom(registry *Registry, groupID string) *Room {
	return &Room{
		GroupID:  groupID,
		commands: make(chan roomCommand),
		done:     make(chan struct{}),
		registry: registry,
		clients:  make(map[*Client]struct{}),
	}
}

// Connect authorizes the user against the live member set, replays
// recent history into the client's outbound queue and registers the
// connection. Authorization is checked fresh on every connect; an
// approval completed before this call is always visible.
func (r *Room) Connect(ctx context.Context, client *Client) error {
	cmd := connectCmd{ctx: ctx, client: client, reply: make(chan error, 1)}

	select {
	case r.commands <- cmd:
	case <-r.done:
		return errRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send validates and persists the message, then fans it out to every
// live connection in the group, the sender's other connections
// included. The call returns once the message is durably stored;
// fan-out to peers is fire-and-forget from the sender's perspective.
func (r *Room) Send(ctx context.Context, client *Client, content string) (*domain.ChatMessage, error) {
	cmd := sendCmd{ctx: ctx, client: client, content: content, reply: make(chan sendResult, 1)}

	select {
	case r.commands <- cmd:
	case <-r.done:
		return nil, errRoomClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-cmd.reply:
		return result.message, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Disconnect releases the connection. Safe to call from the read pump
// after the room has already been torn down.
func (r *Room) Disconnect(client *Client) {
	select {
	case r.commands <- disconnectCmd{client: client}:
	case <-r.done:
	}
}

// stopIfEmpty asks the room to shut down if no connections remain.
// Called by the registry after the teardown grace period.
func (r *Room) stopIfEmpty() bool {
	cmd := stopIfEmptyCmd{reply: make(chan bool, 1)}

	select {
	case r.commands <- cmd:
		return <-cmd.reply
	case <-r.done:
		return true
	}
}

func (r *Room) run() {
	for cmd := range r.commands {
		switch c := cmd.(type) {
		case connectCmd:
			c.reply <- r.handleConnect(c)
		case sendCmd:
			message, err := r.handleSend(c)
			c.reply <- sendResult{message: message, err: err}
		case disconnectCmd:
			r.handleDisconnect(c.client)
		case stopIfEmptyCmd:
			if len(r.clients) == 0 {
				close(r.done)
				c.reply <- true
				return
			}
			c.reply <- false
		}
	}
}

func (r *Room) handleConnect(cmd connectCmd) error {
	if _, err := r.registry.authorizer.RequireMember(cmd.ctx, r.GroupID, cmd.client.UserID); err != nil {
		r.reapIfEmpty()
		return err
	}

	history, err := r.registry.messages.GetRecent(cmd.ctx, r.GroupID, r.registry.historyLimit)
	if err != nil {
		r.reapIfEmpty()
		return err
	}

	r.clients[cmd.client] = struct{}{}
	r.registry.metrics.ConnectionsActive.Inc()

	// History goes into the queue before the client is visible to any
	// later fan-out, so replayed and live messages never interleave
	// out of order.
	cmd.client.enqueue(NewHistory(r.GroupID, history))

	r.registry.logger.Infow("client connected",
		"group", r.GroupID, "user", cmd.client.UserID, "connections", len(r.clients))
	return nil
}

func (r *Room) handleSend(cmd sendCmd) (*domain.ChatMessage, error) {
	// Membership is re-validated on every send: a traveler removed
	// after connecting cannot keep chatting on a stale connection.
	if _, err := r.registry.authorizer.RequireMember(cmd.ctx, r.GroupID, cmd.client.UserID); err != nil {
		return nil, err
	}

	message, err := domain.NewChatMessage(r.GroupID, cmd.client.UserID, cmd.client.Username, cmd.content)
	if err != nil {
		return nil, err
	}
	if message.CreatedAt.Before(r.lastStamp) {
		message.CreatedAt = r.lastStamp
	}
	r.lastStamp = message.CreatedAt

	// Store first, broadcast second. A persistence failure must not
	// leak a message to recipients that was never durably stored.
	if err := r.registry.messages.Create(cmd.ctx, message); err != nil {
		return nil, err
	}

	frame := NewMessageReceived(*message)
	for client := range r.clients {
		client.enqueue(frame)
	}

	r.registry.metrics.MessagesAccepted.Inc()
	return message, nil
}

func (r *Room) handleDisconnect(client *Client) {
	if _, ok := r.clients[client]; !ok {
		return
	}

	delete(r.clients, client)
	client.closeQueue()
	r.registry.metrics.ConnectionsActive.Dec()

	r.registry.logger.Infow("client disconnected",
		"group", r.GroupID, "user", client.UserID, "connections", len(r.clients))

	if len(r.clients) == 0 {
		r.registry.scheduleTeardown(r.GroupID)
	}
}

// reapIfEmpty arms the teardown timer for a room whose only connect
// attempt failed; without it a rejected first connect would leak the
// room forever.
func (r *Room) reapIfEmpty() {
	if len(r.clients) == 0 {
		r.registry.scheduleTeardown(r.GroupID)
	}
}
