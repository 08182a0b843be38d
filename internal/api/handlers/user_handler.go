package handlers

import (
	"net/http"

	"github.com/authmail/authmail-be/internal/apierr"
	"github.com/authmail/authmail-be/internal/auth"
	"github.com/authmail/authmail-be/internal/services"
)

// UserHandler handles HTTP requests for user data.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// userView is the redacted shape returned to the client. Password hash
// and OTP fields never appear here.
type userView struct {
	Name       string `json:"name"`
	IsVerified bool   `json:"isAccountVerified"`
}

// GetData returns the authenticated user's profile.
func (h *UserHandler) GetData(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, apierr.Auth("Not authorized. Please login again."))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		User:    userView{Name: user.Name, IsVerified: user.IsVerified},
	})
}
