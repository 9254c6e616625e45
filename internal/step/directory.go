package step

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sm2x/neos-backups/internal/domain"
)

func init() {
	Register("directory", NewDirectory)
}

// Directory is a step that snapshots a set of paths. On backup each
// configured path is copied under <workdir>/<step name>/<base name>; on
// restore the copies are written back to their original locations.
type Directory struct {
	name       string
	workingDir string
	paths      []string
}

// NewDirectory creates a directory step. Options:
//
//	paths: list of absolute paths to back up (required, non-empty)
func NewDirectory(workingDir, name string, options map[string]any) (domain.Step, error) {
	paths, err := stringSlice(options, "paths")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("directory step requires at least one path")
	}
	return &Directory{name: name, workingDir: workingDir, paths: paths}, nil
}

func (s *Directory) Name() string { return s.name }

// Backup copies each configured path into the step's area of the working
// directory.
func (s *Directory) Backup(ctx context.Context) error {
	stepDir := filepath.Join(s.workingDir, s.name)
	if err := os.MkdirAll(stepDir, 0o750); err != nil {
		return fmt.Errorf("create step directory: %w", err)
	}
	for _, src := range s.paths {
		if err := copyTree(ctx, src, filepath.Join(stepDir, filepath.Base(src))); err != nil {
			return fmt.Errorf("capture %s: %w", src, err)
		}
	}
	return nil
}

// Restore copies each captured path from the working directory back to its
// original location.
func (s *Directory) Restore(ctx context.Context) error {
	stepDir := filepath.Join(s.workingDir, s.name)
	for _, dst := range s.paths {
		src := filepath.Join(stepDir, filepath.Base(dst))
		if _, err := os.Stat(src); err != nil {
			return fmt.Errorf("captured copy of %s: %w", dst, err)
		}
		if err := copyTree(ctx, src, dst); err != nil {
			return fmt.Errorf("restore %s: %w", dst, err)
		}
	}
	return nil
}

// copyTree copies src to dst. src may be a file, directory, or symlink;
// directories are copied recursively with permissions preserved.
func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)

	case info.IsDir():
		return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			target := filepath.Join(dst, rel)

			entryInfo, err := d.Info()
			if err != nil {
				return err
			}
			switch {
			case entryInfo.Mode()&os.ModeSymlink != 0:
				return copySymlink(path, target)
			case d.IsDir():
				return os.MkdirAll(target, entryInfo.Mode().Perm())
			default:
				return copyFile(path, target, entryInfo.Mode().Perm())
			}
		})

	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	_ = os.Remove(dst)
	return os.Symlink(target, dst)
}

// stringSlice reads a list-of-strings option. TOML decoding yields []any, so
// both representations are accepted.
func stringSlice(options map[string]any, key string) ([]string, error) {
	raw, ok := options[key]
	if !ok {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("option %s: expected string, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("option %s: expected list of strings, got %T", key, raw)
	}
}
