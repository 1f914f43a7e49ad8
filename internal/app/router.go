package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/audit"
	"github.com/ledgerline/ledgerline/internal/auth"
	"github.com/ledgerline/ledgerline/internal/authz"
	"github.com/ledgerline/ledgerline/internal/companies"
	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/ledger/reports"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/shared"
	"github.com/ledgerline/ledgerline/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	AuthHandler      *auth.Handler
	CompaniesHandler *companies.Handler
	UsersHandler     *users.Handler
	LedgerHandler    *ledger.Handler
	ReportsHandler   *reports.Handler
	AuditHandler     *audit.Handler
	Authz            authz.Middleware
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router. Company-scoped subtrees sit behind a
// capability gate keyed on the {companyID} route parameter; services re-check
// the specific capability before mutating.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountUserRoutes)
	r.Route("/companies", func(r chi.Router) {
		params.CompaniesHandler.MountRoutes(r)
		r.Route("/{companyID}", func(r chi.Router) {
			params.CompaniesHandler.MountCompanyRoutes(r)
			r.Route("/members", func(r chi.Router) {
				r.Use(params.Authz.RequireCapability(authz.CapUsersManage))
				params.UsersHandler.MountMemberRoutes(r)
			})
			r.Route("/ledger", func(r chi.Router) {
				r.Use(params.Authz.RequireCapability(authz.CapAccountingRead))
				params.LedgerHandler.MountRoutes(r)
			})
			r.Route("/reports", func(r chi.Router) {
				r.Use(params.Authz.RequireCapability(authz.CapReportsRead))
				params.ReportsHandler.MountRoutes(r)
			})
			r.Route("/audit-logs", func(r chi.Router) {
				r.Use(params.Authz.RequireCapability(authz.CapAuditRead))
				params.AuditHandler.MountRoutes(r)
			})
		})
	})

	return r
}
