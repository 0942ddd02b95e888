package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Zip writes the contents of dir into a zip archive at dst. Entry names are
// slash-separated paths relative to dir, so unpacking reproduces the staged
// tree.
func Zip(dir, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", dst, err)
	}

	zw := zip.NewWriter(out)

	err = fs.WalkDir(os.DirFS(dir), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		w, err := zw.Create(p)
		if err != nil {
			return err
		}

		in, err := os.Open(filepath.Join(dir, p))
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		_ = zw.Close()
		_ = out.Close()
		return fmt.Errorf("failed to archive %s: %w", dir, err)
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
