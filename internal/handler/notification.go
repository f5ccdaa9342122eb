package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/realtime"
	"github.com/prestaweb/api/internal/service"
	"github.com/prestaweb/api/pkg/response"
)

type NotificationHandler struct {
	notifications *service.NotificationService
	auth          *service.AuthService
	hub           *realtime.Hub
	validator     *validator.Validate
}

func NewNotificationHandler(
	notifications *service.NotificationService,
	auth *service.AuthService,
	hub *realtime.Hub,
) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		auth:          auth,
		hub:           hub,
		validator:     validator.New(),
	}
}

// List returns the signed-in client's notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := SubjectID(r.Context())
	if !ok {
		response.Unauthorized(w, "invalid token subject")
		return
	}

	notifications, err := h.notifications.ListForClient(r.Context(), clientID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, notifications)
}

// MarkRead acknowledges one of the signed-in client's notifications.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	clientID, ok := SubjectID(r.Context())
	if !ok {
		response.Unauthorized(w, "invalid token subject")
		return
	}

	id, ok := pathID(r, "notificationId")
	if !ok {
		response.BadRequest(w, "invalid notification id", nil)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, clientID); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.NoContent(w)
}

// Create sends a notification to a client (staff only).
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	if err := h.notifications.Notify(r.Context(), req.ClientID, req.Title, req.Body); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, nil)
}

// Connect upgrades to a websocket for live notification delivery. Browsers
// can't set headers on websocket requests, so the token rides in the query
// string.
func (h *NotificationHandler) Connect(w http.ResponseWriter, r *http.Request) {
	claims, err := h.auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		response.Unauthorized(w, "invalid token")
		return
	}

	clientID, ok := parseUUID(claims.Subject)
	if !ok {
		response.Unauthorized(w, "invalid token subject")
		return
	}

	h.hub.ServeWS(w, r, clientID)
}
