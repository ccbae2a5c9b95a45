package handlers

import (
	"encoding/json"
	"net/http"

	"flowstate-server/middleware"
	"flowstate-server/services"
	"flowstate-server/utils/errors"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Token == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	user, sessionToken, err := h.authService.Login(r.Context(), input.Token)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": sessionToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if token == "" {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	if err := h.authService.Logout(r.Context(), token); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// WhoAmI answers for anonymous callers too: an empty object when no valid
// session is presented.
func (h *AuthHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	userID := actorID(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	profile, err := h.userService.GetProfile(r.Context(), userID, userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.User)
}
