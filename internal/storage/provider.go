// Package storage defines the vault file-system abstraction.
package storage

import "time"

// DocumentInfo is lightweight metadata returned by list operations.
type DocumentInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root.
type Provider interface {
	// EnsureDir creates dir (and any parents) if it does not already exist.
	EnsureDir(dir string) error
	// List returns metadata for every .md file under dir.
	List(dir string) ([]DocumentInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
