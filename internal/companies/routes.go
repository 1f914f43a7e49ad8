package companies

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the collection endpoints. List and Create are
// session-scoped; the service filters by membership.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// MountCompanyRoutes attaches single-company endpoints inside a {companyID}
// subtree.
func (h *Handler) MountCompanyRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Delete("/", h.Delete)
}
