package groups

import (
	"time"

	"github.com/wayfare-app/wayfare/internal/domain"
)

type joinRequestResponse struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func newJoinRequestResponse(request domain.JoinRequest) joinRequestResponse {
	return joinRequestResponse{
		ID:          request.ID,
		GroupID:     request.GroupID,
		RequesterID: request.RequesterID,
		Status:      string(request.Status),
		CreatedAt:   request.CreatedAt,
	}
}

type pendingRequestResponse struct {
	Request joinRequestResponse `json:"request"`
	User    domain.Profile      `json:"user"`
}

type pendingListResponse struct {
	Requests []pendingRequestResponse `json:"requests"`
}

type membersResponse struct {
	AdminID string           `json:"admin_id"`
	Members []domain.Profile `json:"members"`
}

type messagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}
