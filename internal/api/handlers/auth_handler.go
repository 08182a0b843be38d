package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/authmail/authmail-be/internal/apierr"
	"github.com/authmail/authmail-be/internal/auth"
	"github.com/authmail/authmail-be/internal/services"
)

// AuthHandler handles HTTP requests for the authentication flows.
type AuthHandler struct {
	service services.AuthServiceProvider
	secure  bool // production cookie mode
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider, secure bool) *AuthHandler {
	return &AuthHandler{service: service, secure: secure}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		respondError(w, r, apierr.Validation("Missing details"))
		return
	}

	_, token, err := h.service.Register(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	respondSuccess(w, http.StatusCreated, "User registered successfully")
}

// Login handles user authentication and session issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, r, apierr.Validation("Email and password are required"))
		return
	}

	_, token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	respondSuccess(w, http.StatusOK, "Login successful")
}

// Logout clears the session cookie. It succeeds whether or not a
// session was present.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	respondSuccess(w, http.StatusOK, "Logged out")
}

// SendVerifyOTP emails a fresh account-verification code to the
// authenticated user.
func (h *AuthHandler) SendVerifyOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, apierr.Auth("Not authorized. Please login again."))
		return
	}

	if err := h.service.SendVerifyOTP(r.Context(), userID); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Verification OTP sent to email")
}

// VerifyAccount consumes a verification code for the authenticated
// user.
func (h *AuthHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, apierr.Auth("Not authorized. Please login again."))
		return
	}

	var payload struct {
		OTP string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if payload.OTP == "" {
		respondError(w, r, apierr.Validation("Missing OTP"))
		return
	}

	if err := h.service.VerifyAccount(r.Context(), userID, payload.OTP); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Email verified successfully")
}

// IsAuth reports a valid session; the middleware has already done the
// work by the time this runs.
func (h *AuthHandler) IsAuth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true})
}

// SendResetOTP emails a password-reset code. This is the forgot-password
// entry point, so no session is required.
func (h *AuthHandler) SendResetOTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if payload.Email == "" {
		respondError(w, r, apierr.Validation("Email is required"))
		return
	}

	if err := h.service.SendResetOTP(r.Context(), payload.Email); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Password reset OTP sent to email")
}

// VerifyOTP checks a reset code without consuming it.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if payload.Email == "" || payload.OTP == "" {
		respondError(w, r, apierr.Validation("Email and OTP are required"))
		return
	}

	if err := h.service.VerifyResetOTP(r.Context(), payload.Email, payload.OTP); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "OTP verified successfully")
}

// ResetPassword consumes a reset code and sets a new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apierr.Validation("Invalid request body"))
		return
	}
	if payload.Email == "" || payload.OTP == "" || payload.NewPassword == "" {
		respondError(w, r, apierr.Validation("Email, OTP, and new password are required"))
		return
	}

	if err := h.service.ResetPassword(r.Context(), payload.Email, payload.OTP, payload.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Password has been reset successfully")
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	sameSite := http.SameSiteLaxMode
	if h.secure {
		// The SPA is served from a different origin in production.
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(auth.SessionTTL),
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: sameSite,
		Path:     "/",
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if h.secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: sameSite,
		Path:     "/",
	})
}
