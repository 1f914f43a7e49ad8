package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Handler wires the JSON authentication endpoints.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	validate       *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validate:       validator.New(),
	}
}

// MountRoutes registers auth routes. Login attempts are rate limited per IP
// to slow credential stuffing.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(user.ID)
	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, loginResponse{UserID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}
