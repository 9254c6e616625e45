package domain

// Index is the durable catalog of backups and the single source of truth for
// whether a backup exists. Implementations must make Add and Delete
// effectively atomic from the caller's perspective.
type Index interface {
	// List returns backups in insertion order, skipping offset entries.
	// A limit of 0 means no limit.
	List(offset, limit int) ([]Backup, error)

	// Get returns the backup with the given name, or ErrNotFound.
	Get(name string) (Backup, error)

	// Add appends a backup. Returns ErrExists if the name is already taken.
	Add(b Backup) error

	// Delete removes the entry with the given name, or returns ErrNotFound.
	Delete(name string) error

	// Count returns the number of entries.
	Count() (int, error)
}
