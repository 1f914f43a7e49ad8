package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/authz"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Handler exposes account and membership management over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the users HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=administrator manager accountant assistant"`
}

// MountUserRoutes attaches the cross-tenant account endpoints.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
}

// MountMemberRoutes attaches the company-scoped membership endpoints.
func (h *Handler) MountMemberRoutes(r chi.Router) {
	r.Get("/", h.ListMembers)
	r.Put("/{userID}", h.AssignRole)
	r.Delete("/{userID}", h.RemoveMember)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	list, err := h.service.ListUsers(r.Context(), actorID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.CreateUser(r.Context(), actorID, req.Email, req.Name, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	members, err := h.service.ListMembers(r.Context(), actorID, companyID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, members)
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.AssignRole(r.Context(), actorID, companyID, targetID, authz.Role(req.Role)); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	if err := h.service.RemoveMember(r.Context(), actorID, companyID, targetID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (actorID, companyID int64, ok bool) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return 0, 0, false
	}
	actorID, found := shared.CurrentUserID(r.Context())
	if !found {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return 0, 0, false
	}
	return actorID, companyID, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrPermissionDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrSelfDemotion), errors.Is(err, authz.ErrUnknownRole):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Rejected", err.Error())
	default:
		h.logger.Error("users request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
