package index

import (
	"log/slog"
	"time"

	"github.com/starford/mannaz/internal/checksum"
	"github.com/starford/mannaz/internal/contact"
	"github.com/starford/mannaz/internal/storage"
)

// Sync walks the contacts folder and brings the index up to date:
//   - new/changed documents are decoded and upserted
//   - documents that are not valid contacts are skipped (and dropped from the
//     index if previously present)
//   - documents removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, folder string, logger *slog.Logger) error {
	metas, err := store.List(folder)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDocument(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteContact(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexDocument decodes data and upserts it into the index. Documents that
// do not decode as contacts are removed from the index instead; they are a
// normal skip condition, never an error.
func IndexDocument(db *DB, path string, data []byte) error {
	c, ok := contact.Decode(data)
	if !ok {
		return db.DeleteContact(path)
	}
	row := ContactRow{
		Path:          path,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Company:       c.Company,
		Frequency:     c.Frequency,
		LastContacted: c.LastContacted,
		NextContact:   c.NextContact,
		Tags:          c.Tags,
		Checksum:      checksum.Sum(data),
		UpdatedAt:     time.Now(),
	}
	return db.UpsertContact(row, c.Notes)
}
