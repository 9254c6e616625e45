package compress

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/sm2x/neos-backups/internal/domain"
)

func init() {
	Register("zip", func() domain.Compressor { return &Zip{} })
}

// Zip packages directories as zip archives, for environments where tooling
// cannot read tarballs. Symlinks are not supported; targz is the default.
type Zip struct{}

// Name returns "zip".
func (c *Zip) Name() string { return "zip" }

// Filename maps a backup name to its archive filename.
func (c *Zip) Filename(name string) string { return name + ".zip" }

// Compress packages sourceDir into <targetDir>/<base(sourceDir)>.zip using
// the same temp-file-and-rename discipline as the tar.gz compressor.
func (c *Zip) Compress(ctx context.Context, sourceDir, targetDir string) (_ string, retErr error) {
	archivePath := filepath.Join(targetDir, c.Filename(filepath.Base(sourceDir)))

	tmp, err := os.CreateTemp(targetDir, ".zip-*")
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

	zw := zip.NewWriter(tmp)

	err = filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, walkErr error) error {
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

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("zip header for %s: %w", rel, err)
		}
		header.Name = rel
		if info.IsDir() {
			header.Name += "/"
		} else {
			header.Method = zip.Deflate
		}

		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("write zip header for %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		_, err = io.Copy(w, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip writer: %w", err)
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
func (c *Zip) Decompress(ctx context.Context, archivePath, targetDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractZipEntry(targetDir, file); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(targetDir string, file *zip.File) error {
	target := filepath.Join(targetDir, filepath.FromSlash(file.Name))
	if !strings.HasPrefix(target, filepath.Clean(targetDir)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal path in archive: %s", file.Name)
	}

	mode := file.Mode() &^ (os.ModeSetuid | os.ModeSetgid)

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(target, mode.Perm()|0700); err != nil {
			return fmt.Errorf("create directory %s: %w", file.Name, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("create directory for %s: %w", file.Name, err)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open %s in archive: %w", file.Name, err)
	}
	defer rc.Close()

	_ = os.Remove(target)
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", file.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", file.Name, err)
	}
	_ = os.Chtimes(target, file.Modified, file.Modified)
	return nil
}
