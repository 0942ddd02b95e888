package config

import (
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"

	"gopkg.in/yaml.v3"
)

// ConflictError reports two configuration files assigning different scalar
// values to the same path.
type ConflictError struct {
	Path string
}

func (err *ConflictError) Error() string {
	return fmt.Sprintf("conflicting values for configuration path %s", err.Path)
}

// Merge reads the given configuration files, walking any directories among
// them, and deep-merges the documents in order into a single YAML document.
// With conflictError set, two files assigning different scalar values to the
// same path is an error; otherwise the later file wins.
func Merge(configFiles []string, conflictError bool) ([]byte, error) {
	var docs []map[string]any
	for _, f := range configFiles {
		err := filepath.WalkDir(f, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			doc, err := readDocument(path)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	merged := map[string]any{}
	for _, doc := range docs {
		var err error
		if merged, err = mergeMaps(merged, doc, "", conflictError); err != nil {
			return nil, err
		}
	}

	bs, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merged configuration: %w", err)
	}
	return bs, nil
}

func readDocument(path string) (map[string]any, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(bs, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	return doc, nil
}

// mergeMaps overlays doc onto base. Keys are visited in sorted order so that
// merge errors are deterministic.
func mergeMaps(base, doc map[string]any, path string, conflictError bool) (map[string]any, error) {
	for _, key := range slices.Sorted(maps.Keys(doc)) {
		value := doc[key]
		existing, ok := base[key]
		if !ok {
			base[key] = value
			continue
		}

		existingMap, ok1 := existing.(map[string]any)
		valueMap, ok2 := value.(map[string]any)
		if ok1 && ok2 {
			merged, err := mergeMaps(existingMap, valueMap, path+"/"+key, conflictError)
			if err != nil {
				return nil, err
			}
			base[key] = merged
			continue
		}

		if conflictError && !reflect.DeepEqual(existing, value) {
			return nil, &ConflictError{Path: path + "/" + key}
		}
		base[key] = value
	}
	return base, nil
}
