package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/raunelaunch/fooddiscovery/internal/api/middleware"
	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/rs/zerolog/log"
)

// ProfileStore is the mock account and session store
type ProfileStore interface {
	Login(ctx context.Context, identifier, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*entities.Session, error)
	CurrentProfile(ctx context.Context, token string) (entities.Profile, error)
	SaveProfile(ctx context.Context, token string, update services.ProfileUpdate) (entities.Profile, error)
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error
}

// ProfileHandler handles login, logout and profile editing
type ProfileHandler struct {
	profiles ProfileStore
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// LoginRequest accepts either a username or an email as identifier
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password"`
}

// ChangePasswordRequest is the body of POST /api/profile/password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ProfileResponse is the current profile and, when logged in, the session
type ProfileResponse struct {
	Profile  entities.Profile  `json:"profile"`
	Session  *entities.Session `json:"session"`
	LoggedIn bool              `json:"loggedIn"`
}

// Login handles POST /api/auth/login
func (h *ProfileHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}

	identifier := firstNonEmpty(req.Identifier, req.Username, req.Email)
	if identifier == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, services.CodeInvalidCredentials)
		return
	}

	result, err := h.profiles.Login(r.Context(), identifier, req.Password)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout
func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if _, t, ok := middleware.SessionFromContext(r.Context()); ok {
		token = t
	}

	if err := h.profiles.Logout(r.Context(), token); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/profile
// Anonymous callers get the default profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := middleware.BearerToken(r)

	session, err := h.profiles.CurrentSession(ctx, token)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	profile, err := h.profiles.CurrentProfile(ctx, token)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProfileResponse{
		Profile:  profile,
		Session:  session,
		LoggedIn: session != nil,
	})
}

// UpdateProfile handles PUT /api/profile
// The account edited is always the session's own. Passwords change only
// through ChangePassword, which verifies the old one.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, token, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	var update services.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		respondWithAppError(w, err)
		return
	}
	update.ID = session.UserID
	update.Password = ""

	profile, err := h.profiles.SaveProfile(r.Context(), token, update)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	log.Info().Int64("user_id", profile.ID).Msg("Profile updated")
	respondWithJSON(w, http.StatusOK, profile)
}

// Register handles POST /api/accounts
func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	var update services.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		respondWithAppError(w, err)
		return
	}
	if update.Password == "" {
		respondWithError(w, http.StatusBadRequest, services.CodePasswordRequired)
		return
	}
	update.ID = 0

	profile, err := h.profiles.SaveProfile(r.Context(), "", update)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, profile)
}

// ChangePassword handles POST /api/profile/password
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	_, token, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}

	if err := h.profiles.ChangePassword(r.Context(), token, req.OldPassword, req.NewPassword); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAvatars handles GET /api/profile/avatars
func (h *ProfileHandler) ListAvatars(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"images": services.AvailableImages(),
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
