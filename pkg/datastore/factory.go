package datastore

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

// NewDatastore creates a new datastore based on the provided configuration.
// It selects the backend (file, SQLite or etcd) based on cfg.Backend.
//
// Example usage:
//
//	cfg := &datastore.Config{
//	    Backend:  datastore.BackendFile,
//	    FileRoot: "requests",
//	}
//	ds, err := datastore.NewDatastore(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.Close()
func NewDatastore(cfg *Config) (Datastore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("datastore config cannot be nil")
	}

	switch cfg.Backend {
	case BackendFile, "":
		return NewFileDatastore(cfg)

	case BackendSQLite:
		return NewSQLiteDatastore(cfg)

	case BackendEtcd:
		return NewEtcdDatastore(cfg)

	default:
		return nil, fmt.Errorf("unsupported datastore backend: %s", cfg.Backend)
	}
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.IsCode(err, errors.ErrCodeNotFound)
}

// validateArtifactName rejects names that would escape the artifact namespace.
func validateArtifactName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || path.Base(name) != name {
		return errors.New(
			errors.ErrCodeFormat,
			fmt.Sprintf("Invalid artifact name: %q", name),
			"Artifact names must be a single path component",
			"This is an internal error - report it with the route name used",
		)
	}
	return nil
}

// filterNames returns the sorted names matching a path.Match pattern.
func filterNames(names []string, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFormat,
			fmt.Sprintf("Invalid artifact pattern: %q", pattern),
			"The pattern is not a valid glob",
			"Use shell glob syntax such as filtering-uplink-*")
	}

	matched := make([]string, 0, len(names))
	for _, name := range names {
		ok, _ := path.Match(pattern, name)
		if ok {
			matched = append(matched, name)
		}
	}
	sort.Strings(matched)
	return matched, nil
}
