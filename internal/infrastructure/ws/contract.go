package ws

import "github.com/wayfare-app/wayfare/internal/domain"

// WSMessage is the frame envelope on the wire. Data carries a
// fully-formed ChatMessage for chat frames; clients never synthesize
// their own echo of a sent message.
type WSMessage struct {
	Type    string `json:"type"`
	GroupID string `json:"groupId"`
	Data    any    `json:"data"`
}

// Inbound frames carry only the content; everything else is
// server-assigned.
type InboundFrame struct {
	Content string `json:"content"`
}

type HistoryPayload struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func NewMessageReceived(message domain.ChatMessage) *WSMessage {
	return &WSMessage{
		Type:    MessageReceived,
		GroupID: message.GroupID,
		Data:    message,
	}
}

func NewHistory(groupID string, messages []domain.ChatMessage) *WSMessage {
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return &WSMessage{
		Type:    MessageHistory,
		GroupID: groupID,
		Data: HistoryPayload{
			Messages: messages,
		},
	}
}

func NewError(groupID, message string) *WSMessage {
	return &WSMessage{
		Type:    ErrorEvent,
		GroupID: groupID,
		Data: ErrorPayload{
			Message: message,
		},
	}
}

func NewAuthError(groupID, message string) *WSMessage {
	return &WSMessage{
		Type:    AuthenticationError,
		GroupID: groupID,
		Data: ErrorPayload{
			Code:    "AUTH_FAILED",
			Message: message,
		},
	}
}

func NewSendFailed(groupID, code, message string) *WSMessage {
	return &WSMessage{
		Type:    SendFailed,
		GroupID: groupID,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
