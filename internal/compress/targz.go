package compress

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/sm2x/neos-backups/internal/domain"
)

func init() {
	Register("targz", func() domain.Compressor { return &TarGz{} })
}

// TarGz packages directories as gzip-compressed tarballs. Compression runs
// through pgzip so large archives use all cores.
type TarGz struct{}

// Name returns "targz".
func (c *TarGz) Name() string { return "targz" }

// Filename maps a backup name to its archive filename.
func (c *TarGz) Filename(name string) string { return name + ".tar.gz" }

// Compress packages sourceDir into <targetDir>/<base(sourceDir)>.tar.gz.
// The archive is written to a temp file and renamed into place, so a partial
// write never leaves a readable archive at the final path.
func (c *TarGz) Compress(ctx context.Context, sourceDir, targetDir string) (_ string, retErr error) {
	archivePath := filepath.Join(targetDir, c.Filename(filepath.Base(sourceDir)))

	tmp, err := os.CreateTemp(targetDir, ".targz-*")
	if err != nil {
		return "", fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	gz, err := pgzip.NewWriterLevel(tmp, pgzip.DefaultCompression)
	if err != nil {
		return "", fmt.Errorf("create gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)

	if err := writeTree(ctx, tw, sourceDir); err != nil {
		return "", err
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("close gzip writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp archive: %w", err)
	}
	if err := os.Rename(tmpPath, archivePath); err != nil {
		return "", fmt.Errorf("rename temp archive: %w", err)
	}

	return archivePath, nil
}

// Decompress materializes the archive's tree under targetDir.
func (c *TarGz) Decompress(ctx context.Context, archivePath, targetDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		if err := extractEntry(targetDir, header, tr); err != nil {
			return err
		}
	}
	return nil
}

// writeTree streams the directory tree rooted at sourceDir into tw.
// Directories are written explicitly so empty directories survive the round
// trip.
func writeTree(ctx context.Context, tw *tar.Writer, sourceDir string) error {
	return filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return fmt.Errorf("read link %s: %w", path, err)
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("tar header for %s: %w", rel, err)
		}
		header.Name = rel
		if info.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write tar header for %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		_, err = io.Copy(tw, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		return nil
	})
}

// extractEntry writes one tar entry under targetDir, refusing paths that
// escape it and stripping setuid/setgid bits.
func extractEntry(targetDir string, header *tar.Header, r io.Reader) error {
	target := filepath.Join(targetDir, filepath.FromSlash(header.Name))
	if !strings.HasPrefix(target, filepath.Clean(targetDir)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal path in archive: %s", header.Name)
	}

	mode := os.FileMode(header.Mode) &^ (os.ModeSetuid | os.ModeSetgid)

	switch header.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, mode.Perm()|0700); err != nil {
			return fmt.Errorf("create directory %s: %w", header.Name, err)
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return fmt.Errorf("create directory for %s: %w", header.Name, err)
		}
		// Remove any existing entry so we never write through a symlink
		// planted by a previous archive entry.
		_ = os.Remove(target)

		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
		if err != nil {
			return fmt.Errorf("create %s: %w", header.Name, err)
		}
		if _, err := io.Copy(out, r); err != nil {
			out.Close()
			return fmt.Errorf("extract %s: %w", header.Name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close %s: %w", header.Name, err)
		}
		_ = os.Chtimes(target, header.AccessTime, header.ModTime)
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return fmt.Errorf("create directory for %s: %w", header.Name, err)
		}
		_ = os.Remove(target)
		if err := os.Symlink(header.Linkname, target); err != nil {
			return fmt.Errorf("create symlink %s: %w", header.Name, err)
		}
	}
	return nil
}
