package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Handler exposes the ledger over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the ledger HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type lineRequest struct {
	AccountID   int64  `json:"account_id" validate:"required"`
	Description string `json:"description"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

type draftRequest struct {
	Date        string        `json:"date" validate:"required"`
	Description string        `json:"description" validate:"required"`
	Reference   string        `json:"reference"`
	TotalAmount string        `json:"total_amount" validate:"required"`
	Lines       []lineRequest `json:"lines" validate:"required,dive"`
}

type accountRequest struct {
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	SubType  string `json:"sub_type"`
	ParentID *int64 `json:"parent_id"`
}

func (in draftRequest) toInput() (DraftInput, error) {
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return DraftInput{}, err
	}
	total, err := decimal.NewFromString(in.TotalAmount)
	if err != nil {
		return DraftInput{}, err
	}
	var ref uuid.UUID
	if in.Reference != "" {
		if ref, err = uuid.Parse(in.Reference); err != nil {
			return DraftInput{}, err
		}
	}
	out := DraftInput{Date: date, Description: in.Description, Reference: ref, TotalAmount: total}
	for _, l := range in.Lines {
		debit, err := parseAmount(l.Debit)
		if err != nil {
			return DraftInput{}, err
		}
		credit, err := parseAmount(l.Credit)
		if err != nil {
			return DraftInput{}, err
		}
		out.Lines = append(out.Lines, LineInput{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       debit,
			Credit:      credit,
		})
	}
	return out, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req draftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.CreateDraft(r.Context(), companyID, actorID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "entryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	var req draftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.UpdateDraft(r.Context(), companyID, actorID, entryID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "entryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	if err := h.service.DeleteDraft(r.Context(), companyID, actorID, entryID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "entryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	entry, err := h.service.Post(r.Context(), companyID, actorID, entryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "entryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	_ = httpx.DecodeJSON(r, &req)
	reversal, err := h.service.Reverse(r.Context(), companyID, actorID, entryID, req.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reversal)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	entryID, err := pathID(r, "entryID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	entry, err := h.service.GetEntry(r.Context(), companyID, entryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	filter := EntryFilter{}
	if raw := r.URL.Query().Get("posted"); raw != "" {
		posted := raw == "true"
		filter.Posted = &posted
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = &from
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			filter.To = &to
		}
	}
	entries, err := h.service.ListEntries(r.Context(), companyID, filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	companyID, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	accounts, err := h.service.ListAccounts(r.Context(), companyID, includeInactive)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.CreateAccount(r.Context(), companyID, actorID, AccountInput{
		Code: req.Code, Name: req.Name, Type: AccountType(req.Type), SubType: req.SubType, ParentID: req.ParentID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "accountID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.UpdateAccount(r.Context(), companyID, actorID, accountID, AccountInput{
		Code: req.Code, Name: req.Name, Type: AccountType(req.Type), SubType: req.SubType, ParentID: req.ParentID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, false)
}

func (h *Handler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	h.setAccountActive(w, r, true)
}

func (h *Handler) setAccountActive(w http.ResponseWriter, r *http.Request, active bool) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "accountID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	if err := h.service.SetAccountActive(r.Context(), companyID, actorID, accountID, active); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	companyID, actorID, ok := h.scope(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r, "accountID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	if err := h.service.DeleteAccount(r.Context(), companyID, actorID, accountID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (companyID, actorID int64, ok bool) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return 0, 0, false
	}
	actorID, found := shared.CurrentUserID(r.Context())
	if !found {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return 0, 0, false
	}
	return companyID, actorID, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		p := httpx.ProblemDetail{
			Status: http.StatusUnprocessableEntity,
			Title:  "Entry Rejected",
			Detail: verr.Error(),
		}
		if verr.Line >= 0 {
			p.Field = "lines[" + strconv.Itoa(verr.Line) + "]"
		}
		if errors.Is(err, ErrUnbalancedEntry) || errors.Is(err, ErrTotalMismatch) {
			p.Difference = verr.Difference.StringFixed(2)
		}
		httpx.ProblemDetailed(w, p)
	case errors.Is(err, ErrEntryNotFound), errors.Is(err, ErrAccountNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrEntryLocked), errors.Is(err, ErrEntryAlreadyPosted), errors.Is(err, ErrEntryNotPosted),
		errors.Is(err, ErrAccountInUse), errors.Is(err, ErrAccountTypeImmutable), errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrPermissionDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrInvalidAccountType):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("ledger request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
