package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/service"
	"github.com/prestaweb/api/pkg/response"
)

type ClientHandler struct {
	clients   *service.ClientService
	validator *validator.Validate
}

func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{
		clients:   clients,
		validator: validator.New(),
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	resp, err := h.clients.CreateClient(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, resp)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "clientId")
	if !ok {
		response.BadRequest(w, "invalid client id", nil)
		return
	}

	client, err := h.clients.GetClient(r.Context(), id)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, clients)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "clientId")
	if !ok {
		response.BadRequest(w, "invalid client id", nil)
		return
	}

	var req domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	client, err := h.clients.UpdateClient(r.Context(), id, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "clientId")
	if !ok {
		response.BadRequest(w, "invalid client id", nil)
		return
	}

	if err := h.clients.DeleteClient(r.Context(), id); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.NoContent(w)
}

// pathID extracts and parses a uuid path variable.
func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	return parseUUID(mux.Vars(r)[name])
}

func parseUUID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
