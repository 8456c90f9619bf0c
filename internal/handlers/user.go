package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/messagely/apiserver/internal/services"
	"github.com/messagely/apiserver/types"
)

// UserHandler provides HTTP handlers for user profiles and per-user
// message listings.
type UserHandler struct {
	userService    *services.UserService
	messageService *services.MessageService
}

func NewUserHandler(userService *services.UserService, messageService *services.MessageService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		messageService: messageService,
	}
}

// UserRouter registers user routes on the given router. All routes require
// authentication; the profile and listing routes additionally require the
// path username to match the authenticated identity.
func UserRouter(r chi.Router, userService *services.UserService, messageService *services.MessageService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService, messageService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListUsers)
	r.Route("/{username}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Get("/to", handler.MessagesTo)
		r.Get("/from", handler.MessagesFrom)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, UserListResponse{Users: users})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireSameUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Get(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// MessagesTo returns messages sent to the user, each with the sender
// profile resolved.
func (h *UserHandler) MessagesTo(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireSameUser(w, r)
	if !ok {
		return
	}

	messages, err := h.messageService.ListTo(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}

// MessagesFrom returns messages sent by the user, each with the recipient
// profile resolved.
func (h *UserHandler) MessagesFrom(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireSameUser(w, r)
	if !ok {
		return
	}

	messages, err := h.messageService.ListFrom(r.Context(), username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}

// requireSameUser resolves the path username and verifies it matches the
// authenticated identity.
func (h *UserHandler) requireSameUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	requester, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}

	username := chi.URLParam(r, "username")
	if username != requester {
		writeError(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return username, true
}

type UserListResponse struct {
	Users []types.UserSummary `json:"users"`
}

type MessageListResponse struct {
	Messages []types.MessageWithCounterparty `json:"messages"`
}
