package domain

import "errors"

var (
	// ErrNotFound indicates the named backup (or its archive) does not exist.
	ErrNotFound = errors.New("backup not found")

	// ErrExists indicates an index entry with the same name already exists.
	ErrExists = errors.New("backup already exists")
)
