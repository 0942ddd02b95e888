package staging

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/fs"
	"github.com/distbuild/distctl/internal/logging"
	"github.com/distbuild/distctl/internal/modules"
)

// Clean empties the staging and products directories. The directories
// themselves are kept (or created) so later stages can write into them.
func Clean(s config.Settings, log *logging.Logger) error {
	for _, dir := range []string{s.StagingDir, s.ProductsDir} {
		log.Debugf("cleaning %s", dir)
		if err := removeContents(dir); err != nil {
			return fmt.Errorf("failed to clean %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Stage copies exactly the resolved file set, plus the always-included
// necessity files, from the source tree into the staging directory. Files
// matching the configured exclusion patterns are skipped.
func Stage(s config.Settings, files modules.FileSet, log *logging.Logger) error {
	ok, err := fs.ContainsFiles(os.DirFS(s.SourceDir))
	if err != nil {
		return fmt.Errorf("failed to read source tree %s: %w", s.SourceDir, err)
	}
	if !ok {
		return fmt.Errorf("source tree %s contains no files", s.SourceDir)
	}

	filter, err := fs.NewFilter(nil, s.ExcludedFiles)
	if err != nil {
		return err
	}

	staged := 0
	for _, f := range files {
		if !filter.Match(f) {
			log.Debugf("skipping excluded file %s", f)
			continue
		}
		if err := copyFile(filepath.Join(s.SourceDir, f), filepath.Join(s.StagingDir, f)); err != nil {
			return fmt.Errorf("failed to stage %s: %w", f, err)
		}
		staged++
	}

	necessity, err := stageNecessityFiles(s)
	if err != nil {
		return err
	}

	log.Infof("staged %d resolved files and %d necessity files into %s", staged, necessity, s.StagingDir)
	return nil
}

func stageNecessityFiles(s config.Settings) (int, error) {
	if len(s.NecessityFiles) == 0 {
		return 0, nil
	}

	fsys, err := fs.NewFilterFS(os.DirFS(s.SourceDir), s.NecessityFiles, s.ExcludedFiles)
	if err != nil {
		return 0, err
	}

	count := 0
	err = iofs.WalkDir(fsys, ".", func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := copyFile(filepath.Join(s.SourceDir, p), filepath.Join(s.StagingDir, p)); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to stage necessity files: %w", err)
	}
	return count, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func removeContents(path string) error {

	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return err
	}

	for _, f := range files {
		err := os.RemoveAll(filepath.Join(path, f.Name()))
		if err != nil {
			return err
		}
	}

	return nil
}
