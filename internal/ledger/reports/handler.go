package reports

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// IntegrityEnqueuer schedules a background integrity scan for one company.
type IntegrityEnqueuer interface {
	EnqueueIntegrityScan(ctx context.Context, companyID int64) error
}

// Handler serves the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	jobs    IntegrityEnqueuer
}

// NewHandler constructs the reports HTTP handler. jobs may be nil when no
// queue is available; the scan trigger then responds 503.
func NewHandler(logger *slog.Logger, service *Service, jobs IntegrityEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, jobs: jobs}
}

// MountRoutes attaches report endpoints under a company-scoped subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/profit-and-loss", h.ProfitAndLoss)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/accounts/{accountID}/balance", h.AccountBalance)
	r.Post("/integrity-scan", h.TriggerIntegrityScan)
}

// TriggerIntegrityScan enqueues an out-of-band trial balance check for the
// company. The scan runs nightly anyway; this endpoint exists so an operator
// who suspects corruption does not have to wait for the schedule.
func (h *Handler) TriggerIntegrityScan(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	if h.jobs == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "job queue not configured")
		return
	}
	if err := h.jobs.EnqueueIntegrityScan(r.Context(), companyID); err != nil {
		h.logger.Error("enqueue integrity scan", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.optionalDate(w, r, "as_of")
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), companyID, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from date required as YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to date required as YYYY-MM-DD")
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), companyID, from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.optionalDate(w, r, "as_of")
	if !ok {
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), companyID, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.companyID(w, r)
	if !ok {
		return
	}
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	asOf, ok := h.optionalDate(w, r, "as_of")
	if !ok {
		return
	}
	balance, err := h.service.AccountBalance(r.Context(), companyID, accountID, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}

func (h *Handler) companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return 0, false
	}
	return id, true
}

func (h *Handler) optionalDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ledger.ErrInvalidAccountType):
		h.logger.Error("report hit unknown account type", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	default:
		h.logger.Error("report failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
