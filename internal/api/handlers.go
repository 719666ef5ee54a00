package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/contact"
	"github.com/starford/mannaz/internal/contactbook"
	"github.com/starford/mannaz/internal/index"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc      *contactbook.Service
	db       index.ContactIndex
	settings Settings
}

// NewHandler creates a new Handler.
func NewHandler(svc *contactbook.Service, db index.ContactIndex, settings Settings) *Handler {
	return &Handler{svc: svc, db: db, settings: settings}
}

// contactName extracts the contact name from the URL, decoding any
// percent-encoding (names may contain spaces).
func contactName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListContacts handles GET /api/contacts. Activating the list view runs the
// reconciliation pass first, so stale next_contact dates are rewritten and
// the response reflects what is on disk.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, reconciled, err := h.svc.Reconcile(r.Context())
	if err != nil {
		slog.Error("list contacts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	items := make([]ContactListItem, len(contacts))
	for i, c := range contacts {
		items[i] = listItem(c)
	}
	writeJSON(w, http.StatusOK, ContactListResponse{
		Contacts:   items,
		Total:      len(items),
		Reconciled: reconciled,
	})
}

// GetContact handles GET /api/contacts/{name}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	name := contactName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	c, err := h.svc.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get contact failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateContact handles POST /api/contacts. Name and phone are required;
// a missing one aborts the save with 400 and nothing is persisted. Email
// and phone format advisories are returned alongside the created contact
// but never block it.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	created, err := h.svc.Create(r.Context(), req.Contact())
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("contact already exists"))
		} else {
			slog.Error("create contact failed", slog.String("name", req.Name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, ContactResponse{Contact: *created, Warnings: req.Advisories()})
}

// UpdateContact handles PUT /api/contacts/{name}. The URL carries the
// ORIGINAL name: when the body's name differs, the backing document is
// renamed before its content is rewritten. Fields not collected by the form
// (created, last_contacted, next_contact) are carried over from the stored
// contact, so the save recomputes next_contact from the existing
// last_contacted rather than from "now".
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	originalName := contactName(r)
	if originalName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	existing, err := h.svc.Get(r.Context(), originalName)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update contact failed", slog.String("name", originalName), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	c := req.Contact()
	c.Created = existing.Created
	c.LastContacted = existing.LastContacted
	c.NextContact = existing.NextContact

	updated, err := h.svc.Update(r.Context(), c, originalName)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update contact failed", slog.String("name", originalName), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ContactResponse{Contact: *updated, Warnings: req.Advisories()})
}

// TouchContact handles POST /api/contacts/{name}/touch: mark as contacted
// now, independent of the main save action.
func (h *Handler) TouchContact(w http.ResponseWriter, r *http.Request) {
	name := contactName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	c, err := h.svc.Touch(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("touch contact failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ContactResponse{Contact: *c})
}

// DeleteContact handles DELETE /api/contacts/{name}.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	name := contactName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), name); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete contact failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.db.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]SearchResult, len(results))
	for i, res := range results {
		out[i] = SearchResult{Path: res.Path, Name: res.Name, Snippet: res.Snippet}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// Due handles GET /api/due: contacts whose next_contact is not after now,
// soonest first.
func (h *Handler) Due(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	now := time.Now().Format(contact.StampLayout)
	rows, err := h.db.ListDue(now, limit)
	if err != nil {
		slog.Error("due query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	items := make([]DueItem, len(rows))
	for i, row := range rows {
		items[i] = DueItem{
			Name:        row.Name,
			Phone:       row.Phone,
			NextContact: row.NextContact,
			Frequency:   row.Frequency,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"due": items})
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settings)
}
