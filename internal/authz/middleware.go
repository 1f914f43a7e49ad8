package authz

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Middleware wires capability checks into company-scoped HTTP routes.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireCapability rejects requests whose session user lacks the capability
// within the company named by the {companyID} route parameter. Denied
// attempts are logged here; the service layer re-checks before mutating.
func (m Middleware) RequireCapability(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := shared.CurrentUserID(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
			if err != nil {
				httpx.RespondError(w, fmt.Errorf("%w: invalid company id", httpx.ErrBadRequest))
				return
			}
			allowed, err := m.Service.Can(r.Context(), userID, companyID, cap)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authz capability check", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if !allowed {
				if m.Logger != nil {
					m.Logger.Warn("authz denied",
						slog.Int64("user_id", userID),
						slog.Int64("company_id", companyID),
						slog.String("capability", string(cap)))
				}
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
