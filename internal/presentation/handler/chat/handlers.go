// Package chat upgrades group chat connections. Authentication rides
// in a query parameter because browser websocket clients cannot set
// an Authorization header; everything after the upgrade is handled by
// the room.
package chat

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/infrastructure/auth"
	"github.com/wayfare-app/wayfare/internal/infrastructure/ws"
)

type Handler struct {
	verifier   auth.Verifier
	users      domain.UserRepository
	registry   *ws.Registry
	sendBuffer int
	logger     *zap.SugaredLogger

	upgrader websocket.Upgrader
}

func NewHandler(
	verifier auth.Verifier,
	users domain.UserRepository,
	registry *ws.Registry,
	sendBuffer int,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		verifier:   verifier,
		users:      users,
		registry:   registry,
		sendBuffer: sendBuffer,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		http.Error(w, "group ID is missing", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "group", groupID, "error", err)
		return
	}

	// Auth failures after the upgrade are reported in-band so the peer
	// learns why it was dropped instead of seeing a bare close.
	userID, err := h.verifier.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		_ = conn.WriteJSON(ws.NewAuthError(groupID, "missing or invalid token"))
		_ = conn.Close()
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		_ = conn.WriteJSON(ws.NewAuthError(groupID, "unknown user"))
		_ = conn.Close()
		return
	}

	client := ws.NewClient(conn, user.ID, user.Name, groupID, h.sendBuffer, h.logger)

	room, err := h.registry.Connect(r.Context(), client)
	if err != nil {
		var frame *ws.WSMessage
		switch {
		case errors.Is(err, domain.ErrNotAuthorized):
			frame = ws.NewAuthError(groupID, "you are not a member of this group")
		case errors.Is(err, domain.ErrGroupNotFound):
			frame = ws.NewError(groupID, "group not found")
		default:
			frame = ws.NewError(groupID, "could not join the group chat")
		}
		_ = conn.WriteJSON(frame)
		_ = conn.Close()
		return
	}

	go client.WriteMessage()
	// The read pump outlives the request; it must not die with the
	// request context when this handler returns.
	go client.ReadPump(context.WithoutCancel(r.Context()), room)
}
