package domain

import "context"

// Compressor packages a directory into a single archive file and back.
// Implementations only write within the target paths they are given.
type Compressor interface {
	// Compress packages all contents of sourceDir into one archive file
	// under targetDir and returns the archive path.
	Compress(ctx context.Context, sourceDir, targetDir string) (string, error)

	// Decompress materializes the archive's directory tree under targetDir.
	Decompress(ctx context.Context, archivePath, targetDir string) error

	// Filename derives the canonical archive filename for a backup name.
	// It is a pure function of the name, so later restore and delete calls
	// can locate the remote object without any other metadata.
	Filename(name string) string

	// Name returns the registry identifier (e.g. "targz", "zip").
	Name() string
}
