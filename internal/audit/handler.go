// Package audit serves read access to the company-scoped audit trail.
package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Store reads persisted audit rows.
type Store interface {
	ListForCompany(ctx context.Context, companyID int64, limit int) ([]shared.AuditLog, error)
}

// Handler serves the audit trail endpoints.
type Handler struct {
	logger *slog.Logger
	store  Store
}

// NewHandler constructs the audit HTTP handler.
func NewHandler(logger *slog.Logger, store Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes attaches audit endpoints under a company-scoped subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// List returns the newest audit rows for the company, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "limit must be a positive integer")
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}
	logs, err := h.store.ListForCompany(r.Context(), companyID, limit)
	if err != nil {
		h.logger.Error("audit list failed", slog.Int64("company_id", companyID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if logs == nil {
		logs = []shared.AuditLog{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"logs": logs})
}
