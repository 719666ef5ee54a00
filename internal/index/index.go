package index

// ContactIndex defines the interface for contact indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type ContactIndex interface {
	UpsertContact(row ContactRow, notes string) error
	DeleteContact(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListDue(before string, limit int) ([]ContactRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ContactIndex at compile time.
var _ ContactIndex = (*DB)(nil)
