// Package contactbook implements the contact repository over vault storage.
package contactbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/contact"
	"github.com/starford/mannaz/internal/index"
	"github.com/starford/mannaz/internal/schedule"
	"github.com/starford/mannaz/internal/storage"
)

// Service coordinates contact documents in the vault with the index.
type Service struct {
	store  storage.Provider
	db     *index.DB
	folder string
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a contact service over the given storage folder.
func NewService(store storage.Provider, db *index.DB, folder string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		db:     db,
		folder: folder,
		logger: logger,
		now:    time.Now,
	}
}

// Folder returns the vault-relative contacts folder.
func (s *Service) Folder() string { return s.folder }

// EnsureStorageReady idempotently creates the contacts folder. Failure is
// non-fatal: it is logged and swallowed, and the first write will surface
// any real problem.
func (s *Service) EnsureStorageReady() {
	if err := s.store.EnsureDir(s.folder); err != nil {
		s.logger.Warn("contactbook: create folder failed",
			slog.String("folder", s.folder),
			slog.String("error", err.Error()))
	}
}

// ListAll enumerates every document under the contacts folder and returns
// the ones that decode as contacts, in enumeration order. Documents without
// valid frontmatter or a name are silently skipped; one bad document never
// aborts the listing.
func (s *Service) ListAll(_ context.Context) ([]contact.Contact, error) {
	metas, err := s.store.List(s.folder)
	if err != nil {
		return nil, fmt.Errorf("contactbook: list: %w", err)
	}
	var out []contact.Contact
	for _, m := range metas {
		data, readErr := s.store.Read(m.Path)
		if readErr != nil {
			s.logger.Warn("contactbook: read failed", slog.String("path", m.Path), slog.String("error", readErr.Error()))
			continue
		}
		c, ok := contact.Decode(data)
		if !ok {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// Get reads and decodes the contact with the given name.
func (s *Service) Get(_ context.Context, name string) (*contact.Contact, error) {
	data, err := s.store.Read(contact.DocumentPath(s.folder, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	c, ok := contact.Decode(data)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// Create writes a new contact document. The create stamps are applied here:
// created, modified, and last_contacted are all set to now, and next_contact
// is derived when a frequency is present. Fails with apperr.ErrAlreadyExists
// when a document for the name is already on disk.
func (s *Service) Create(_ context.Context, c contact.Contact) (*contact.Contact, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("contactbook: create: name is required")
	}
	now := s.now()
	stamp := now.Format(contact.StampLayout)
	c.Created = stamp
	c.Modified = stamp
	c.LastContacted = stamp
	if next, ok := schedule.NextAt(c.LastContacted, c.Frequency, now); ok {
		c.NextContact = next
	}

	path := contact.DocumentPath(s.folder, c.Name)
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	data := contact.Encode(&c)
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	s.indexContact(path, data)
	return &c, nil
}

// Update rewrites an existing contact document. originalName identifies the
// document on disk when the contact is being renamed; empty means the name
// is unchanged. Fails with apperr.ErrNotFound when the original document
// does not exist, and never creates a new document in that case.
//
// The update stamps modified to now and recomputes next_contact from the
// contact's existing last_contacted — only when both a frequency and a
// last_contacted are present.
//
// A rename is a move followed by a content rewrite. The two steps are not
// transactional: a crash in between leaves the document under the new name
// with stale content. No rollback is attempted.
func (s *Service) Update(_ context.Context, c contact.Contact, originalName string) (*contact.Contact, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("contactbook: update: name is required")
	}
	oldName := originalName
	if oldName == "" {
		oldName = c.Name
	}
	oldPath := contact.DocumentPath(s.folder, oldName)
	newPath := contact.DocumentPath(s.folder, c.Name)

	if _, err := s.store.Read(oldPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	now := s.now()
	c.Modified = now.Format(contact.StampLayout)
	if c.Frequency != "" && c.LastContacted != "" {
		if next, ok := schedule.NextAt(c.LastContacted, c.Frequency, now); ok {
			c.NextContact = next
		}
	}

	if oldPath != newPath {
		if err := s.store.Move(oldPath, newPath); err != nil {
			return nil, err
		}
		s.dropIndex(oldPath)
	}

	// Defensive re-check after the move step.
	if _, err := s.store.Read(newPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	data := contact.Encode(&c)
	if err := s.store.Write(newPath, data); err != nil {
		return nil, err
	}
	s.indexContact(newPath, data)
	return &c, nil
}

// Touch marks the contact as contacted now: last_contacted is set to the
// current moment (live clock), next_contact is recomputed when a frequency
// is set, and the document is persisted immediately.
func (s *Service) Touch(ctx context.Context, name string) (*contact.Contact, error) {
	c, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	c.LastContacted = s.now().Format(contact.StampLayout)
	return s.Update(ctx, *c, name)
}

// Delete removes a contact document and its index row.
func (s *Service) Delete(_ context.Context, name string) error {
	path := contact.DocumentPath(s.folder, name)
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	s.dropIndex(path)
	return nil
}

// Reconcile is the list view's passive pass: for every contact with both a
// frequency and a last_contacted date, next_contact is recomputed and the
// document rewritten when the stored value is stale. The modified stamp is
// left alone — only a form save bumps it. When anything changed, the list
// is reloaded from storage so the caller sees what is actually on disk.
// Returns the (possibly reloaded) contacts and the number updated.
func (s *Service) Reconcile(ctx context.Context) ([]contact.Contact, int, error) {
	contacts, err := s.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	updated := 0
	for i := range contacts {
		c := &contacts[i]
		if c.Frequency == "" || c.LastContacted == "" {
			continue
		}
		next, ok := schedule.NextAt(c.LastContacted, c.Frequency, s.now())
		if !ok || next == c.NextContact {
			continue
		}
		c.NextContact = next
		path := contact.DocumentPath(s.folder, c.Name)
		data := contact.Encode(c)
		if writeErr := s.store.Write(path, data); writeErr != nil {
			s.logger.Warn("contactbook: reconcile write failed",
				slog.String("path", path),
				slog.String("error", writeErr.Error()))
			continue
		}
		s.indexContact(path, data)
		updated++
	}

	if updated > 0 {
		contacts, err = s.ListAll(ctx)
		if err != nil {
			return nil, updated, err
		}
	}
	return contacts, updated, nil
}

// indexContact upserts the freshly written document into the index.
// Index failures are logged, never surfaced: the vault write has already
// succeeded and disk is the source of truth.
func (s *Service) indexContact(path string, data []byte) {
	if s.db == nil {
		return
	}
	if err := index.IndexDocument(s.db, path, data); err != nil {
		s.logger.Warn("contactbook: index failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (s *Service) dropIndex(path string) {
	if s.db == nil {
		return
	}
	if err := s.db.DeleteContact(path); err != nil {
		s.logger.Warn("contactbook: index delete failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}
