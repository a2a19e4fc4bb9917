package handlers

import (
	"context"
	"errors"
	"net/http"

	"cinetrack/models"
	"cinetrack/services/users"
)

type userService interface {
	Register(ctx context.Context, creds models.Credentials) (models.User, error)
	Login(ctx context.Context, creds models.Credentials) (models.Token, error)
}

var _ userService = (*users.Service)(nil)

type AuthHandler struct {
	Service userService
}

func NewAuthHandler(service userService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	user, err := h.Service.Register(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailRequired),
			errors.Is(err, users.ErrUsernameRequired),
			errors.Is(err, users.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, KindValidation, err.Error())
		case errors.Is(err, users.ErrUserExists):
			writeError(w, http.StatusConflict, KindConflict, err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	token, err := h.Service.Login(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrUserInactive):
			writeError(w, http.StatusUnauthorized, KindUnauthorized, err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// Me returns the account behind the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}
