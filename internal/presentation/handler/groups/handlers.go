// Package groups exposes the join-request workflow over HTTP plus the
// member-only read endpoints for history and the roster. Group
// creation and editing belong to the CRUD collaborator and have no
// surface here.
package groups

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/application/admission"
	"github.com/wayfare-app/wayfare/internal/application/authz"
	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/infrastructure/auth"
	"github.com/wayfare-app/wayfare/internal/infrastructure/json"
)

type Handler struct {
	engine       admission.Engine
	messages     domain.MessageRepository
	users        domain.UserRepository
	authorizer   *authz.Authorizer
	historyLimit int
	logger       *zap.SugaredLogger
}

func NewHandler(
	engine admission.Engine,
	messages domain.MessageRepository,
	users domain.UserRepository,
	authorizer *authz.Authorizer,
	historyLimit int,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		engine:       engine,
		messages:     messages,
		users:        users,
		authorizer:   authorizer,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

func (h *Handler) CreateJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		json.WriteError(w, http.StatusUnauthorized, "missing or invalid authentication")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		json.WriteBadRequestError(w, "group ID is missing")
		return
	}

	request, err := h.engine.RequestJoin(r.Context(), groupID, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	json.Write(w, http.StatusCreated, newJoinRequestResponse(*request))
}

func (h *Handler) ListPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		json.WriteError(w, http.StatusUnauthorized, "missing or invalid authentication")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		json.WriteBadRequestError(w, "group ID is missing")
		return
	}

	pending, err := h.engine.ListPending(r.Context(), groupID, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := pendingListResponse{Requests: make([]pendingRequestResponse, 0, len(pending))}
	for _, p := range pending {
		resp.Requests = append(resp.Requests, pendingRequestResponse{
			Request: newJoinRequestResponse(p.Request),
			User:    p.User,
		})
	}

	json.Write(w, http.StatusOK, resp)
}

func (h *Handler) ApproveJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		json.WriteError(w, http.StatusUnauthorized, "missing or invalid authentication")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	requestID := chi.URLParam(r, "requestID")
	if groupID == "" || requestID == "" {
		json.WriteBadRequestError(w, "group ID or request ID is missing")
		return
	}

	group, err := h.engine.Approve(r.Context(), groupID, requestID, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	json.Write(w, http.StatusOK, group)
}

func (h *Handler) RejectJoinRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		json.WriteError(w, http.StatusUnauthorized, "missing or invalid authentication")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	requestID := chi.URLParam(r, "requestID")
	if groupID == "" || requestID == "" {
		json.WriteBadRequestError(w, "group ID or request ID is missing")
		return
	}

	if err := h.engine.Reject(r.Context(), groupID, requestID, userID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMessagesHandler is the HTTP fallback for chat history; the live
// path is the websocket replay on connect.
func (h *Handler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		json.WriteError(w, http.StatusUnauthorized, "missing or invalid authentication")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		json.WriteBadRequestError(w, "group ID is missing")
		return
	}

	if _, err := h.authorizer.RequireMember(r.Context(), groupID, userID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	limit := h.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			json.WriteBadRequestError(w, "limit must be a positive integer")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	messages, err := h.messages.GetRecent(r.Context(), groupID, limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	json.Write(w, http.StatusOK, messagesResponse{Messages: messages})
}

func (h *Handler) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		json.WriteError(w, http.StatusUnauthorized, "missing or invalid authentication")
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if groupID == "" {
		json.WriteBadRequestError(w, "group ID is missing")
		return
	}

	group, err := h.authorizer.RequireMember(r.Context(), groupID, userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := membersResponse{
		AdminID: group.AdminID,
		Members: make([]domain.Profile, 0, len(group.Members)),
	}
	for _, memberID := range group.Members {
		user, err := h.users.GetByID(r.Context(), memberID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			h.writeDomainError(w, r, err)
			return
		}
		resp.Members = append(resp.Members, user.Profile())
	}

	json.Write(w, http.StatusOK, resp)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		json.WriteError(w, http.StatusUnauthorized, "missing or invalid authentication")
	case errors.Is(err, domain.ErrNotAuthorized):
		json.WriteError(w, http.StatusForbidden, "you are not allowed to perform this action")
	case errors.Is(err, domain.ErrGroupNotFound):
		json.WriteError(w, http.StatusNotFound, "group not found")
	case errors.Is(err, domain.ErrRequestNotFound):
		json.WriteError(w, http.StatusNotFound, "join request not found")
	case errors.Is(err, domain.ErrUserNotFound):
		json.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, domain.ErrGroupFull):
		json.WriteError(w, http.StatusConflict, "group is full")
	case errors.Is(err, domain.ErrAlreadyMember):
		json.WriteError(w, http.StatusConflict, "already a member of this group")
	case errors.Is(err, domain.ErrDuplicateRequest):
		json.WriteError(w, http.StatusConflict, "a pending join request already exists")
	case errors.Is(err, domain.ErrRequestNotPending):
		json.WriteError(w, http.StatusConflict, "join request has already been decided")
	case errors.Is(err, domain.ErrGroupAlreadyExists):
		json.WriteError(w, http.StatusConflict, "group already exists")
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrMessageTooLong):
		json.WriteValidationError(w, err)
	case errors.Is(err, domain.ErrUnavailable):
		json.WriteError(w, http.StatusServiceUnavailable, "service temporarily unavailable, try again")
	default:
		h.logger.Errorw("unhandled error", "path", r.URL.Path, "error", err)
		json.WriteInternalError(w)
	}
}
