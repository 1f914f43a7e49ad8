package companies

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Handler exposes company management over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the companies HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type companyRequest struct {
	Code    string `json:"code" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	list, err := h.service.ListForUser(r.Context(), actorID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	company, err := h.service.Get(r.Context(), actorID, companyID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	var req companyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), actorID, Company{
		Code: req.Code, Name: req.Name, Address: req.Address, TaxID: req.TaxID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req companyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), actorID, companyID, Company{
		Code: req.Code, Name: req.Name, Address: req.Address, TaxID: req.TaxID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, companyID, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), actorID, companyID); err != nil {
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
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrHasPostedEntries):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrPermissionDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		h.logger.Error("companies request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
