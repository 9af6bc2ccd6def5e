// Package seed loads the demo dataset (three users, three todos, two
// projects) or a user-supplied YAML file into a store, and writes datasets
// back out as YAML.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

//go:embed seed.yaml
var defaultSeed []byte

// Default returns the built-in dataset.
func Default() (types.Dataset, error) {
	return parse(defaultSeed)
}

// ReadFile parses a dataset from the YAML file at path. Seed files are
// stricter than the live store: ids must be unique, and every id in a
// project's todoIds must name a todo defined in the same file. A dangling id
// fails with types.ErrNotFound instead of being skipped, because the sqlite
// backend stores project links under a foreign key.
func ReadFile(path string) (types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("reading seed file: %w", err)
	}
	d, err := parse(data)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func parse(data []byte) (types.Dataset, error) {
	var d types.Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return types.Dataset{}, fmt.Errorf("parsing seed: %w", err)
	}
	for i := range d.Projects {
		if d.Projects[i].TodoIDs == nil {
			d.Projects[i].TodoIDs = []string{}
		}
	}
	if err := d.Check(); err != nil {
		return types.Dataset{}, err
	}
	return d, nil
}

// Apply loads the dataset at path into s, or the built-in dataset when path
// is empty. It returns what was loaded.
func Apply(s types.Store, path string) (types.Dataset, error) {
	var (
		d   types.Dataset
		err error
	)
	if path == "" {
		d, err = Default()
	} else {
		d, err = ReadFile(path)
	}
	if err != nil {
		return types.Dataset{}, err
	}
	if err := s.Load(d); err != nil {
		return types.Dataset{}, fmt.Errorf("loading seed: %w", err)
	}
	return d, nil
}

// Snapshot copies the current content of s into a Dataset.
func Snapshot(s types.Store) (types.Dataset, error) {
	users, err := s.ListUsers()
	if err != nil {
		return types.Dataset{}, err
	}
	todos, err := s.ListTodos()
	if err != nil {
		return types.Dataset{}, err
	}
	projects, err := s.ListProjects()
	if err != nil {
		return types.Dataset{}, err
	}
	return types.Dataset{Users: users, Todos: todos, Projects: projects}, nil
}

// WriteFile atomically writes d as YAML to path using the temp-file, fsync,
// rename pattern. The result can be read back with ReadFile.
func WriteFile(path string, d types.Dataset) error {
	data, err := yaml.Marshal(&d)
	if err != nil {
		return fmt.Errorf("marshal seed: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".seed-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing seed: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
