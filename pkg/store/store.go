// Package store selects and attaches a types.Store backend by name.
package store

import (
	"fmt"

	"github.com/mesh-intelligence/todograph/internal/memory"
	"github.com/mesh-intelligence/todograph/internal/sqlite"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

// New returns an unattached backend for name.
func New(name string) (types.Store, error) {
	switch name {
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, name)
	}
}

// Open creates the backend named by config.Backend and attaches it.
func Open(config types.Config) (types.Store, error) {
	s, err := New(config.Backend)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(config); err != nil {
		return nil, fmt.Errorf("attaching %s backend: %w", config.Backend, err)
	}
	return s, nil
}
