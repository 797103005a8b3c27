package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxMessageLength = 2000

var (
	ErrEmptyMessage   = errors.New("message content is empty")
	ErrMessageTooLong = fmt.Errorf("message content exceeds %d characters", MaxMessageLength)
)

// ChatMessage is immutable once stored. CreatedAt is server-assigned
// and non-decreasing within a group.
type ChatMessage struct {
	ID         string    `json:"id" bson:"id"`
	GroupID    string    `json:"group_id" bson:"group_id"`
	SenderID   string    `json:"sender_id" bson:"sender_id"`
	SenderName string    `json:"sender_name" bson:"sender_name"`
	Content    string    `json:"content" bson:"content"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func NewChatMessage(groupID, senderID, senderName, content string) (*ChatMessage, error) {
	if groupID == "" || senderID == "" {
		return nil, ErrInvalidInput
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if len(content) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	return &ChatMessage{
		ID:         uuid.NewString(),
		GroupID:    groupID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// MessageRepository is the append-only per-group message log.
// GetRecent returns at most limit of the newest messages, ordered by
// CreatedAt ascending, for history replay on connect.
type MessageRepository interface {
	Create(ctx context.Context, message *ChatMessage) error
	GetRecent(ctx context.Context, groupID string, limit int) ([]ChatMessage, error)
}
