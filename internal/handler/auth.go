package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ctoon/ctoon-api/internal/middleware"
	"github.com/ctoon/ctoon-api/internal/model"
	"github.com/ctoon/ctoon-api/internal/service"
)

// AuthHandler is the HTTP shell around AuthService: it decodes requests,
// invokes the service and encodes the uniform result envelope.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, failure("Request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, failure("Invalid request body"))
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case service.IsValidationError(err), errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, failure(err.Error()))
		default:
			slog.Error("register failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, failure("Server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleLogin handles POST /api/auth/login requests. All rejections,
// validation included, answer 401 with the service's message.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err.Error() == "http: request body too large" {
			writeJSON(w, http.StatusRequestEntityTooLarge, failure("Request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, failure("Invalid request body"))
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case service.IsValidationError(err), errors.Is(err, service.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, failure(err.Error()))
		default:
			slog.Error("login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, failure("Server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type meResponse struct {
	Success bool               `json:"success"`
	User    *model.UserView    `json:"user"`
	Profile *model.ProfileView `json:"profile,omitempty"`
}

// HandleMe handles GET /api/auth/me requests. The auth middleware has
// already validated the bearer token and stashed the user ID.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, failure("Unauthorized"))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		slog.Error("loading current user failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, failure("Server error"))
		return
	}
	if user == nil {
		// Valid token for a record that no longer exists.
		writeJSON(w, http.StatusNotFound, failure("User not found"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		slog.Error("loading profile failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, failure("Server error"))
		return
	}

	writeJSON(w, http.StatusOK, meResponse{Success: true, User: user, Profile: profile})
}

// HandleNotFound answers unknown sub-paths under /api/auth/*.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, failure("Endpoint not found"))
}
