package schema

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/fileperms"
	"github.com/jontk/ctb/internal/version"
)

// Store persists registry snapshots.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

// FileStore keeps the schema in a single YAML file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the schema file. A missing file yields an empty snapshot.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Snapshot{Version: version.SchemaFormat}, nil
	}
	if err != nil {
		return Snapshot{}, errors.StorageError("load", s.path, err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errors.StorageError("load", s.path, fmt.Errorf("failed to parse schema file: %w", err))
	}
	if snap.Version == "" {
		snap.Version = version.SchemaFormat
	}
	if err := CheckVersion(snap.Version); err != nil {
		return Snapshot{}, errors.StorageError("load", s.path, err)
	}
	for _, e := range slices.Concat(snap.ContentTypes, snap.Components) {
		for _, attr := range e.Attributes {
			for k, v := range attr {
				attr[k] = plainValue(v)
			}
		}
	}
	return snap, nil
}

// plainValue turns the Attribute maps yaml.v3 decodes below an attribute
// (conditions, conditions.visible, ...) back into map[string]any.
func plainValue(v any) any {
	switch val := v.(type) {
	case Attribute:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = plainValue(item)
		}
		return out
	case map[string]any:
		for k, item := range val {
			val[k] = plainValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = plainValue(item)
		}
		return val
	}
	return v
}

// Save writes the snapshot through a temp file and a rename so readers
// never see a partial file.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Version == "" {
		snap.Version = version.SchemaFormat
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return errors.StorageError("save", s.path, fmt.Errorf("failed to marshal schema: %w", err))
	}
	if err := enc.Close(); err != nil {
		return errors.StorageError("save", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, fileperms.SchemaDir); err != nil {
		return errors.StorageError("save", s.path, fmt.Errorf("failed to create schema directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.StorageError("save", s.path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.StorageError("save", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.StorageError("save", s.path, err)
	}
	if err := os.Chmod(tmpName, fileperms.SchemaFile); err != nil {
		cleanup()
		return errors.StorageError("save", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return errors.StorageError("save", s.path, err)
	}
	return nil
}

// CheckVersion accepts schema files whose major version matches the
// format this build writes.
func CheckVersion(v string) error {
	if !semver.IsValid(v) {
		return errors.Invalid("version", fmt.Sprintf("%q is not a semantic version", v))
	}
	if semver.Major(v) != semver.Major(version.SchemaFormat) {
		return errors.Conflictf("schema format %s is not compatible with %s", v, version.SchemaFormat)
	}
	return nil
}

// LoadInto reads the store and replaces the registry content.
func LoadInto(ctx context.Context, store Store, r *Registry) error {
	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}
	return r.Load(snap)
}

// SaveFrom writes the registry content and marks it saved.
func SaveFrom(ctx context.Context, store Store, r *Registry) error {
	if err := store.Save(ctx, r.Snapshot()); err != nil {
		return err
	}
	r.MarkSaved()
	return nil
}
