package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/asmi/skincare-advisor-backend/internal/models"
)

// Handler holds account-related HTTP handlers. It owns the mapping from
// error kinds to status codes; the service stays transport-agnostic.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// BearerToken extracts the credential from the Authorization header.
// Returns "" when the header is absent; a header without the Bearer
// prefix is passed through as-is and fails verification downstream.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return header
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError translates an error kind into its fixed status/message pair.
// Only the sentinel's message goes out; wrapped detail stays in the logs.
func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, errors.New("server error")
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		status, kind = http.StatusBadRequest, ErrDuplicateEmail
	case errors.Is(err, ErrInvalidCredentials):
		status, kind = http.StatusBadRequest, ErrInvalidCredentials
	case errors.Is(err, ErrInvalidToken):
		status, kind = http.StatusBadRequest, ErrInvalidToken
	case errors.Is(err, ErrValidation):
		status, kind = http.StatusBadRequest, ErrValidation
	case errors.Is(err, ErrUnauthorized):
		status, kind = http.StatusUnauthorized, ErrUnauthorized
	case errors.Is(err, ErrUserNotFound):
		status, kind = http.StatusNotFound, ErrUserNotFound
	}
	writeJSON(w, status, map[string]string{"error": kind.Error()})
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username, email, and password are required"})
		return
	}

	if _, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login authenticates a user and returns a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

// ForgotPassword mails a reset link to the given address.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset link sent to your email"})
}

// Protected confirms the session token and echoes the user it belongs to.
func (h *Handler) Protected(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		writeError(w, ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Access granted",
		"userId":  userID,
	})
}

// Profile returns the authenticated user's username and email.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		writeError(w, ErrUnauthorized)
		return
	}

	user, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
}

// UpdateProfile overwrites the authenticated user's record.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		writeError(w, ErrUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.svc.UpdateProfile(r.Context(), userID, req.Username, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}

// Logout acknowledges the request. Bearer tokens carry no server-side
// state, so there is nothing to invalidate.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
