package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes attaches ledger endpoints under a company-scoped subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Put("/{accountID}", h.UpdateAccount)
		r.Post("/{accountID}/deactivate", h.DeactivateAccount)
		r.Post("/{accountID}/activate", h.ActivateAccount)
		r.Delete("/{accountID}", h.DeleteAccount)
	})
	r.Route("/journal-entries", func(r chi.Router) {
		r.Get("/", h.ListEntries)
		r.Post("/", h.CreateDraft)
		r.Get("/{entryID}", h.GetEntry)
		r.Put("/{entryID}", h.UpdateDraft)
		r.Delete("/{entryID}", h.DeleteDraft)
		r.Post("/{entryID}/post", h.Post)
		r.Post("/{entryID}/reverse", h.Reverse)
	})
}
