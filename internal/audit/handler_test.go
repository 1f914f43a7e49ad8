package audit_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/audit"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type stubStore struct {
	logs      map[int64][]shared.AuditLog
	lastLimit int
}

func (s *stubStore) ListForCompany(ctx context.Context, companyID int64, limit int) ([]shared.AuditLog, error) {
	s.lastLimit = limit
	return s.logs[companyID], nil
}

func newAuditRouter(store *stubStore) http.Handler {
	handler := audit.NewHandler(slog.Default(), store)
	r := chi.NewRouter()
	r.Route("/companies/{companyID}/audit-logs", handler.MountRoutes)
	return r
}

func TestListReturnsCompanyRows(t *testing.T) {
	store := &stubStore{logs: map[int64][]shared.AuditLog{
		7: {
			{ID: 2, CompanyID: 7, ActorID: 21, Action: "journal.post", Entity: "journal_entry", EntityID: "5", At: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
			{ID: 1, CompanyID: 7, ActorID: 21, Action: "journal.draft_create", Entity: "journal_entry", EntityID: "5", At: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}}
	router := newAuditRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/7/audit-logs/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Logs []shared.AuditLog `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Logs, 2)
	require.Equal(t, "journal.post", body.Logs[0].Action)
	require.Equal(t, 100, store.lastLimit)
}

func TestListEmptyCompanyGivesEmptyArray(t *testing.T) {
	router := newAuditRouter(&stubStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/7/audit-logs/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"logs":[]}`, rec.Body.String())
}

func TestListClampsAndValidatesLimit(t *testing.T) {
	store := &stubStore{}
	router := newAuditRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/7/audit-logs/?limit=9000", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 500, store.lastLimit)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies/7/audit-logs/?limit=0", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
