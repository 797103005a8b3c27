package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/domain"
)

// Client is one live websocket connection of a group member. A user
// may hold several clients at once (multiple devices); each is
// registered with the room independently.
type Client struct {
	conn    *connWrapper
	Message chan *WSMessage

	UserID   string
	Username string
	GroupID  string

	logger *zap.SugaredLogger

	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID, username, groupID string, sendBuffer int, logger *zap.SugaredLogger) *Client {
	return &Client{
		conn:     newConnWrapper(conn),
		Message:  make(chan *WSMessage, sendBuffer), // buffered to absorb slow readers
		UserID:   userID,
		Username: username,
		GroupID:  groupID,
		logger:   logger,
	}
}

// enqueue hands a frame to the write pump without ever blocking the
// room goroutine. A client whose buffer is full loses the frame; it
// still has the HTTP history endpoint to catch up.
func (c *Client) enqueue(msg *WSMessage) {
	select {
	case c.Message <- msg:
	default:
		c.logger.Warnw("dropping frame for slow client", "group", c.GroupID, "user", c.UserID)
	}
}

// closeQueue ends the write pump. Only the room goroutine calls this,
// after the client has been removed from the fan-out set.
func (c *Client) closeQueue() {
	c.closeOnce.Do(func() {
		close(c.Message)
	})
}

// ReadPump consumes inbound frames until the peer goes away, routing
// each one through the room's serializer. Validation and authorization
// failures are reported back on the same connection; only the loss of
// membership terminates it.
func (c *Client) ReadPump(ctx context.Context, room *Room) {
	defer func() {
		room.Disconnect(c)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("websocket read failed", "group", c.GroupID, "user", c.UserID, "error", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reply(NewSendFailed(c.GroupID, "malformed_frame", "expected a JSON frame with a content field"))
			continue
		}

		if _, err := room.Send(ctx, c, frame.Content); err != nil {
			if errors.Is(err, domain.ErrNotAuthorized) {
				// Membership was revoked after connecting. Tell the peer
				// why, then drop the connection.
				c.reply(NewAuthError(c.GroupID, "you are no longer a member of this group"))
				return
			}
			c.reply(sendFailure(c.GroupID, err))
		}
	}
}

// WriteMessage drains the outbound queue onto the wire. It exits when the
// room closes the queue or the connection dies.
func (c *Client) WriteMessage() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.Message {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warnw("websocket write failed", "group", c.GroupID, "user", c.UserID, "error", err)
			return
		}
	}
}

// reply writes directly, bypassing the queue. Used for per-frame error
// feedback where losing the frame would leave the sender guessing.
func (c *Client) reply(msg *WSMessage) {
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Warnw("websocket error reply failed", "group", c.GroupID, "user", c.UserID, "error", err)
	}
}

func sendFailure(groupID string, err error) *WSMessage {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return NewSendFailed(groupID, "empty_message", "message content must not be empty")
	case errors.Is(err, domain.ErrMessageTooLong):
		return NewSendFailed(groupID, "message_too_long", "message content exceeds the allowed length")
	default:
		return NewSendFailed(groupID, "unavailable", "message could not be delivered, try again")
	}
}
