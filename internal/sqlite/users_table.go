package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

const selectUser = "SELECT id, name, email, role FROM users"

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var (
		u    types.User
		role sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role); err != nil {
		return types.User{}, err
	}
	u.Role = nullString(role)
	return u, nil
}

func insertUser(q querier, u types.User) error {
	_, err := q.Exec("INSERT INTO users (id, name, email, role) VALUES (?, ?, ?, ?)",
		u.ID, u.Name, u.Email, toNull(u.Role))
	if err != nil {
		return fmt.Errorf("inserting user %s: %w", u.ID, err)
	}
	return nil
}

func getUser(q querier, id string) (types.User, error) {
	u, err := scanUser(q.QueryRow(selectUser+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, fmt.Errorf("user %q: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("getting user %s: %w", id, err)
	}
	return u, nil
}

// ListUsers returns every user in creation order.
func (b *Backend) ListUsers() ([]types.User, error) {
	users := []types.User{}
	err := b.read(func(q querier) error {
		rows, err := q.Query(selectUser + " ORDER BY seq")
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("scanning user: %w", err)
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns the user with id or ErrNotFound.
func (b *Backend) GetUser(id string) (types.User, error) {
	var u types.User
	err := b.read(func(q querier) error {
		var err error
		u, err = getUser(q, id)
		return err
	})
	return u, err
}

// CreateUser stores a new user under a fresh id.
func (b *Backend) CreateUser(in types.NewUser) (types.User, error) {
	u := in.Build(generateUUID())
	if err := b.inTx(func(tx *sql.Tx) error { return insertUser(tx, u) }); err != nil {
		return types.User{}, err
	}
	return u, nil
}

// UpdateUser merges patch into the user with id.
func (b *Backend) UpdateUser(id string, patch types.UserPatch) (types.User, error) {
	var u types.User
	err := b.inTx(func(tx *sql.Tx) error {
		var err error
		if u, err = getUser(tx, id); err != nil {
			return err
		}
		patch.Apply(&u)
		if _, err := tx.Exec("UPDATE users SET name = ?, email = ?, role = ? WHERE id = ?",
			u.Name, u.Email, toNull(u.Role), id); err != nil {
			return fmt.Errorf("updating user %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return types.User{}, err
	}
	return u, nil
}

// DeleteUser removes the user. Todos owned by the user are left in place.
func (b *Backend) DeleteUser(id string) error {
	return b.inTx(func(tx *sql.Tx) error {
		return deleteByID(tx, "users", "user", id)
	})
}

// deleteByID removes one row by id and reports ErrNotFound when none matched.
func deleteByID(q querier, table, entity, id string) error {
	res, err := q.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", entity, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", entity, id, types.ErrNotFound)
	}
	return nil
}
