package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContactRow represents a row in the contacts table.
type ContactRow struct {
	Path          string
	Name          string
	Email         string
	Phone         string
	Company       string
	Frequency     string
	LastContacted string
	NextContact   string
	Tags          []string
	Checksum      string
	UpdatedAt     time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Name    string
	Snippet string
}

// UpsertContact inserts or replaces a contact row and its FTS entry within
// a transaction.
func (db *DB) UpsertContact(row ContactRow, notes string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)

	_, err = tx.Exec(`
		INSERT INTO contacts (path, name, email, phone, company, frequency,
			last_contacted, next_contact, tags, notes, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name           = excluded.name,
			email          = excluded.email,
			phone          = excluded.phone,
			company        = excluded.company,
			frequency      = excluded.frequency,
			last_contacted = excluded.last_contacted,
			next_contact   = excluded.next_contact,
			tags           = excluded.tags,
			notes          = excluded.notes,
			checksum       = excluded.checksum,
			updated_at     = excluded.updated_at
	`, row.Path, row.Name, row.Email, row.Phone, row.Company, row.Frequency,
		row.LastContacted, row.NextContact, string(tagsJSON), notes, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert contact: %w", err)
	}

	// FTS upsert (no-op when the FTS5 build tag is absent).
	if err := ftsUpsert(tx, row.Path, row.Name, row.Company, notes, row.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteContact removes a contact row and its FTS entry.
func (db *DB) DeleteContact(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM contacts WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a contact, or empty string if
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM contacts WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed contact.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM contacts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListDue returns contacts whose next_contact is set and not after before,
// soonest first. Timestamps are YYYY-MM-DDTHH:mm strings, so lexicographic
// comparison is chronological.
func (db *DB) ListDue(before string, limit int) ([]ContactRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT path, name, email, phone, company, frequency,
		       last_contacted, next_contact, tags, checksum, updated_at
		FROM contacts
		WHERE next_contact != '' AND next_contact <= ?
		ORDER BY next_contact ASC
		LIMIT ?
	`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("index: list due: %w", err)
	}
	defer rows.Close()

	var out []ContactRow
	for rows.Next() {
		var r ContactRow
		var tagsJSON string
		if err := rows.Scan(&r.Path, &r.Name, &r.Email, &r.Phone, &r.Company,
			&r.Frequency, &r.LastContacted, &r.NextContact, &tagsJSON,
			&r.Checksum, &r.UpdatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
		out = append(out, r)
	}
	return out, rows.Err()
}
