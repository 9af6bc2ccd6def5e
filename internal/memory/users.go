package memory

import (
	"fmt"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// ListUsers returns every user in creation order.
func (b *Backend) ListUsers() ([]types.User, error) {
	var out []types.User
	err := b.readLocked(func() error {
		out = b.users.list(types.User.Clone)
		return nil
	})
	return out, err
}

// GetUser returns the user with id or ErrNotFound.
func (b *Backend) GetUser(id string) (types.User, error) {
	var out types.User
	err := b.readLocked(func() error {
		u, ok := b.users.byID[id]
		if !ok {
			return fmt.Errorf("user %q: %w", id, types.ErrNotFound)
		}
		out = u.Clone()
		return nil
	})
	return out, err
}

// CreateUser stores a new user under a fresh id.
func (b *Backend) CreateUser(in types.NewUser) (types.User, error) {
	var out types.User
	err := b.writeLocked(func() error {
		u := in.Build(generateUUID())
		b.users.put(u.ID, u)
		out = u.Clone()
		return nil
	})
	return out, err
}

// UpdateUser merges patch into the user with id.
func (b *Backend) UpdateUser(id string, patch types.UserPatch) (types.User, error) {
	var out types.User
	err := b.writeLocked(func() error {
		u, ok := b.users.byID[id]
		if !ok {
			return fmt.Errorf("user %q: %w", id, types.ErrNotFound)
		}
		patch.Apply(&u)
		b.users.put(id, u)
		out = u.Clone()
		return nil
	})
	return out, err
}

// DeleteUser removes the user. Todos owned by the user are left in place.
func (b *Backend) DeleteUser(id string) error {
	return b.writeLocked(func() error {
		if !b.users.remove(id) {
			return fmt.Errorf("user %q: %w", id, types.ErrNotFound)
		}
		return nil
	})
}
