package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prestaweb/api/internal/domain"
	"github.com/prestaweb/api/internal/service"
	"github.com/prestaweb/api/pkg/response"
)

type AuthHandler struct {
	auth      *service.AuthService
	validator *validator.Validate
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: validator.New(),
	}
}

// Login authenticates a portal client by access code.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	resp, err := h.auth.ClientLogin(r.Context(), req.AccessCode)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, resp)
}

// StaffLogin authenticates a staff user by email and password.
func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.StaffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	resp, err := h.auth.StaffLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, resp)
}

// RegisterStaff creates a staff account. Staff-only.
func (h *AuthHandler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	user, err := h.auth.RegisterStaff(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, user)
}
