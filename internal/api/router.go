package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/contactbook"
	"github.com/starford/mannaz/internal/index"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot is used to resolve the attachments directory.
func NewRouter(svc *contactbook.Service, db index.ContactIndex, settings Settings, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc, db, settings)
	ah := NewAttachmentHandler(vaultRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Contacts CRUD + list view.
	r.Get("/contacts", h.ListContacts)
	r.Post("/contacts", h.CreateContact)
	r.Get("/contacts/{name}", h.GetContact)
	r.Put("/contacts/{name}", h.UpdateContact)
	r.Post("/contacts/{name}/touch", h.TouchContact)
	r.Delete("/contacts/{name}", h.DeleteContact)

	// Index-backed queries.
	r.Get("/search", h.Search)
	r.Get("/due", h.Due)

	// Settings blob.
	r.Get("/settings", h.GetSettings)

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
