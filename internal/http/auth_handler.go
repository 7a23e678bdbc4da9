package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"booktrack/internal/auth"
	"booktrack/internal/httpx"
	"booktrack/internal/user"
)

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (user.User, error)
	Login(ctx context.Context, username, password string) (user.User, string, error)
	CurrentUser(ctx context.Context, userID string) (user.User, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request body", nil)
		return
	}
	if details := validateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "validation failed", details)
		return
	}

	u, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			httpx.JSONError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	httpx.JSONSuccessCreated(w, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request body", nil)
		return
	}
	if details := validateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION", "validation failed", details)
		return
	}

	u, token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httpx.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, map[string]any{"user": u, "token": token}, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.CurrentUser(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, u, nil)
}
